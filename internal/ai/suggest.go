package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrEmptySummary is returned when no analysis summary is supplied.
var ErrEmptySummary = errors.New("statistical analysis summary is required")

const promptEN = `You are an expert manufacturing engineer with extensive experience in defect reduction.
Based on the statistical analysis provided, suggest possible defect reduction strategies and process improvements.
Statistical Analysis: %s
Provide clear, actionable suggestions to reduce manufacturing costs and improve product quality.`

const promptES = `Eres un ingeniero de fabricación experto con amplia experiencia en la reducción de defectos.
Basándote en el análisis estadístico proporcionado, sugiere posibles estrategias de reducción de defectos y mejoras en los procesos.
Análisis Estadístico: %s
Proporciona sugerencias claras y accionables para reducir los costos de fabricación y mejorar la calidad del producto.
IMPORTANTE: Todas tus respuestas deben ser exclusivamente en español.`

// SuggestOptions tunes a suggestion request.
type SuggestOptions struct {
	Model       string
	Lang        string // "en" or "es"
	MaxTokens   int
	Temperature float64
	// OnDelta, when set and the runtime supports streaming, receives partial output.
	OnDelta func(string)
}

// SuggestionPrompt builds the user prompt asking for defect-reduction strategies.
func SuggestionPrompt(summary, lang string) (string, error) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", ErrEmptySummary
	}
	tmpl := promptEN
	if strings.EqualFold(lang, "es") {
		tmpl = promptES
	}
	return fmt.Sprintf(tmpl, summary), nil
}

// Suggest asks rt for defect-reduction strategies given an analysis summary.
// Streaming runtimes are used when opt.OnDelta is set; the full text is
// returned either way.
func Suggest(ctx context.Context, rt Runtime, summary string, opt SuggestOptions) (string, error) {
	prompt, err := SuggestionPrompt(summary, opt.Lang)
	if err != nil {
		return "", err
	}
	if rt == nil {
		return "", errors.New("no AI runtime configured")
	}
	req := GenerateRequest{
		Model:       opt.Model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		MaxTokens:   opt.MaxTokens,
		Temperature: opt.Temperature,
	}
	log := logrus.WithFields(logrus.Fields{"model": opt.Model, "lang": opt.Lang})

	if sr, ok := rt.(StreamRuntime); ok && opt.OnDelta != nil {
		var b strings.Builder
		err := sr.GenerateStream(ctx, req, func(d string) {
			b.WriteString(d)
			opt.OnDelta(d)
		})
		if err != nil {
			return "", fmt.Errorf("suggest: %w", err)
		}
		log.Debug("suggestion streamed")
		return strings.TrimSpace(b.String()), nil
	}

	resp, err := rt.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("suggest: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("suggest: model returned no content")
	}
	log.WithFields(logrus.Fields{
		"request_id":    resp.RequestID,
		"prompt_tokens": resp.Usage.PromptTokens,
		"output_tokens": resp.Usage.CompletionTokens,
	}).Debug("suggestion received")
	return text, nil
}
