package analysis

import (
	"fmt"
	"strings"
)

// Summary languages.
const (
	LangEnglish = "en"
	LangSpanish = "es"
)

type summaryText struct {
	empty, header, costs, noCosts, types, severities, closing string
}

var summaries = map[string]summaryText{
	LangEnglish: {
		empty:      "No data loaded yet. Please load manufacturing defect data to run the analysis.",
		header:     "Analysis of %d defect records:\n",
		costs:      "- Repair costs: mean $%.2f, median $%.2f, std. dev. $%.2f. Range from $%.2f to $%.2f.\n",
		noCosts:    "- Repair cost statistics could not be computed.\n",
		types:      "- %d unique defect types were observed.\n",
		severities: "- %d unique severity levels were observed.\n",
		closing:    "\nPlease provide more detailed findings or specific areas of concern for targeted AI suggestions.",
	},
	LangSpanish: {
		empty:      "No hay datos cargados todavía. Por favor, cargue datos de defectos de fabricación para realizar el análisis.",
		header:     "Análisis de %d registros de defectos:\n",
		costs:      "- Costos de Reparación: Media $%.2f, Mediana $%.2f, Desv. Est. $%.2f. Rango de $%.2f a $%.2f.\n",
		noCosts:    "- No se pudieron calcular las estadísticas de costos de reparación.\n",
		types:      "- Se observaron %d tipos de defectos únicos.\n",
		severities: "- Se observaron %d niveles de severidad únicos.\n",
		closing:    "\nPor favor, proporcione hallazgos más detallados o áreas específicas de preocupación para sugerencias de IA específicas.",
	},
}

// Summary renders the short plain-text digest handed to the suggestion
// prompt. Unknown languages fall back to English.
func (r *Report) Summary(lang string) string {
	t, ok := summaries[strings.ToLower(lang)]
	if !ok {
		t = summaries[LangEnglish]
	}
	if r == nil || r.Records == 0 {
		return t.empty
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf(t.header, r.Records))
	if c := r.Cost; c != nil {
		b.WriteString(fmt.Sprintf(t.costs, c.Mean, c.Median, c.StdDev, c.Min, c.Max))
	} else {
		b.WriteString(t.noCosts)
	}
	unique := func(key string) int {
		if d := r.Distribution(key); d != nil {
			return d.Unique
		}
		return 0
	}
	b.WriteString(fmt.Sprintf(t.types, unique("defect_type")))
	b.WriteString(fmt.Sprintf(t.severities, unique("severity")))
	b.WriteString(t.closing)
	return b.String()
}
