package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/defectlens-cli/internal/ai"
)

var modelsProvider string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models and pricing used for suggestions",
	Example: `  defectlens models
  defectlens models --provider ollama`,
	RunE: func(cmd *cobra.Command, args []string) error {
		providers := []string{ai.ProviderOpenRouter, ai.ProviderOllama}
		if modelsProvider != "" {
			providers = []string{resolveProvider(modelsProvider)}
		}
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Provider", "Model", "Context", "In $/1K", "Out $/1K", "Default"})
		for _, p := range providers {
			def, _ := ai.DefaultModel(p)
			for _, mi := range ai.ModelsFor(p) {
				mark := ""
				if mi.Name == def {
					mark = "✓"
				}
				t.AppendRow(table.Row{p, mi.Name, mi.ContextTokens, fmt.Sprintf("%.5f", mi.InputPerK), fmt.Sprintf("%.5f", mi.OutputPerK), mark})
			}
		}
		fmt.Println(t.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().StringVar(&modelsProvider, "provider", "", "only list this provider's models")
}
