package cmd

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/defectlens-cli/internal/ai"
	"github.com/KaramelBytes/defectlens-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/defectlens-cli/internal/config"
	"github.com/KaramelBytes/defectlens-cli/internal/utils"
)

var (
	sugImport      importFlags
	sugSummaryText string
	sugSummaryFile string
	sugProvider    string
	sugModel       string
	sugOllamaHost  string
	sugLang        string
	sugMaxTokens   int
	sugTemp        float64
	sugTimeoutSec  int
	sugStream      bool
	sugDryRun      bool
	sugOutputPath  string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [file]",
	Short: "Ask an AI model for defect-reduction strategies based on the analysis summary",
	Example: `  defectlens suggest defects.csv --dry-run
  defectlens suggest defects.csv --provider ollama --model llama3.1:8b --stream
  defectlens suggest --summary-file findings.txt --lang es`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := summaryLang(sugLang)
		summary, err := suggestionSummary(args, lang)
		if err != nil {
			return err
		}
		prompt, err := ai.SuggestionPrompt(summary, lang)
		if err != nil {
			return err
		}

		provider := resolveProvider(sugProvider)
		model := selectModel(provider, sugModel)
		maxTokens := sugMaxTokens
		if maxTokens <= 0 && cfg != nil && cfg.MaxTokens > 0 {
			maxTokens = cfg.MaxTokens
		}
		if maxTokens <= 0 {
			maxTokens = 1024
		}
		temp := sugTemp
		if temp <= 0 && cfg != nil && cfg.Temperature > 0 {
			temp = cfg.Temperature
		}

		tokens := utils.CountTokens(prompt)
		fmt.Fprintf(os.Stderr, "Tokens: prompt≈%d, max output %d\n", tokens, maxTokens)
		if mi, ok := ai.LookupModel(model); ok {
			if cost, ok := ai.EstimateCostUSD(model, tokens, maxTokens); ok {
				fmt.Fprintf(os.Stderr, "Estimated max cost: ~$%.4f (in %.4f/out %.4f per 1K tokens)\n", cost, mi.InputPerK, mi.OutputPerK)
			}
		}

		if sugDryRun {
			sum := sha1.Sum([]byte(prompt))
			fmt.Println("--dry-run: no API call will be made. Prompt preview below --")
			fmt.Printf("Request ID (dry-run): sim_%x\n", sum[:6])
			fmt.Printf("Provider: %s, model: %s\n\n", provider, model)
			fmt.Println(prompt)
			return nil
		}

		rt, err := buildRuntime(provider, sugOllamaHost)
		if err != nil {
			return err
		}
		timeout := time.Duration(sugTimeoutSec) * time.Second
		if timeout <= 0 {
			timeout = 180 * time.Second
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		opt := ai.SuggestOptions{Model: model, Lang: lang, MaxTokens: maxTokens, Temperature: temp}
		streaming := sugStream && sugOutputPath == ""
		if streaming {
			opt.OnDelta = func(d string) { fmt.Print(d) }
		}
		fmt.Fprintf(os.Stderr, "⚙ Requesting suggestions with %s/%s ...\n", provider, model)
		text, err := ai.Suggest(ctx, rt, summary, opt)
		if err != nil {
			return explainAIError(err, provider, model)
		}
		if streaming {
			fmt.Println()
			return nil
		}
		return writeOutput(sugOutputPath, []byte(text+"\n"), "suggestions")
	},
}

// suggestionSummary returns the analysis summary from a data file, a text
// flag or a text file, in that order of precedence.
func suggestionSummary(args []string, lang string) (string, error) {
	switch {
	case len(args) == 1:
		ds, err := sugImport.load(args[0])
		if err != nil {
			return "", err
		}
		opt, err := analysisOptions(analyzeCmd)
		if err != nil {
			return "", err
		}
		return analysis.Analyze(ds, opt).Summary(lang), nil
	case sugSummaryText != "":
		return sugSummaryText, nil
	case sugSummaryFile != "":
		b, err := os.ReadFile(sugSummaryFile)
		if err != nil {
			return "", fmt.Errorf("read summary: %w", err)
		}
		return string(b), nil
	}
	return "", fmt.Errorf("%w: pass a data file, --summary-text or --summary-file", ai.ErrEmptySummary)
}

func resolveProvider(flag string) string {
	p := strings.ToLower(strings.TrimSpace(flag))
	if p == "" && cfg != nil {
		p = strings.ToLower(cfg.DefaultProvider)
	}
	switch p {
	case "ollama", "local":
		return ai.ProviderOllama
	}
	return ai.ProviderOpenRouter
}

func selectModel(provider, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cfg != nil && cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	m, _ := ai.DefaultModel(provider)
	return m
}

func buildRuntime(provider, ollamaHost string) (ai.Runtime, error) {
	c := cfg
	if c == nil {
		c = cfgpkg.Defaults()
	}
	rc := c.Runtime()
	if ollamaHost != "" {
		rc.Host = ollamaHost
	}
	if provider == ai.ProviderOpenRouter && rc.APIKey == "" {
		return nil, errors.New("OPENROUTER_API_KEY is missing: export it, set DEFECTLENS_API_KEY, or run 'defectlens config set api_key <key>'")
	}
	rt, ok := ai.GetRuntime(provider, rc)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s (use %s)", provider, strings.Join(ai.Providers(), " or "))
	}
	return rt, nil
}

// explainAIError adds user-facing hints for common error classes.
func explainAIError(err error, provider, model string) error {
	var (
		authErr *ai.AuthError
		rlErr   *ai.RateLimitError
		nfErr   *ai.ModelNotFoundError
		qErr    *ai.QuotaExceededError
		sErr    *ai.ServerError
		unreach *ai.UnreachableError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("request timed out; raise --timeout-sec or check the provider: %w", err)
	case errors.As(err, &unreach):
		return fmt.Errorf("Ollama not reachable at %s. Ensure Ollama is running and the host is correct (DEFECTLENS_OLLAMA_HOST or config 'ollama_host'): %w", unreach.Host, err)
	case errors.As(err, &authErr):
		return fmt.Errorf("authentication failed: set OPENROUTER_API_KEY or add api_key in ~/.defectlens/config.yaml: %w", err)
	case errors.As(err, &rlErr):
		if rlErr.RetryAfter > 0 {
			return fmt.Errorf("rate limited, try again in ~%ds: %w", int(rlErr.RetryAfter.Seconds()), err)
		}
		return fmt.Errorf("rate limited by provider, please retry: %w", err)
	case errors.As(err, &nfErr):
		if provider == ai.ProviderOllama {
			return fmt.Errorf("local model not available (%s). Install it with 'ollama pull %s' or choose another model: %w", model, model, err)
		}
		return fmt.Errorf("model not found (%s). See 'defectlens models' for known names: %w", model, err)
	case errors.As(err, &qErr):
		return fmt.Errorf("quota/billing issue. Check your provider account: %w", err)
	case errors.As(err, &sErr):
		return fmt.Errorf("provider appears unavailable (server error). Please retry later: %w", err)
	}
	return err
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	f := suggestCmd.Flags()
	sugImport.bind(f)
	f.StringVar(&sugSummaryText, "summary-text", "", "analysis summary to send instead of analyzing a file")
	f.StringVar(&sugSummaryFile, "summary-file", "", "read the analysis summary from this file")
	f.StringVar(&sugProvider, "provider", "", "AI provider: openrouter|ollama (default from config)")
	f.StringVar(&sugModel, "model", "", "model name (default from config or provider)")
	f.StringVar(&sugOllamaHost, "ollama-host", "", "Ollama host URL (overrides config)")
	f.StringVar(&sugLang, "lang", "", "prompt and summary language: en|es (default from config)")
	f.IntVar(&sugMaxTokens, "max-tokens", 0, "maximum output tokens (default from config)")
	f.Float64Var(&sugTemp, "temperature", 0, "sampling temperature (default from config)")
	f.IntVar(&sugTimeoutSec, "timeout-sec", 180, "request timeout in seconds")
	f.BoolVar(&sugStream, "stream", false, "stream the response as it is generated")
	f.BoolVar(&sugDryRun, "dry-run", false, "print the prompt without calling the model")
	f.StringVarP(&sugOutputPath, "output", "o", "", "optional path to write the suggestions")
}
