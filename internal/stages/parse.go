package stages

import (
	"fmt"
	"strconv"
	"strings"

	"scriptdna/internal/jsonrepair"
)

const (
	DefaultHookType         = "Unknown Style"
	DefaultStructureSummary = "Analysis incomplete."
	DefaultPersonaName      = "Unknown Persona"
	DefaultStyleSummary     = "No style summary available"

	maxKeyThemes = 3
)

// ParseAnalysis normalises an Analyze response. Any valid JSON yields a
// result; missing or mistyped fields take their defaults. PacingHeatmap is
// left empty for the caller to derive from the transcript.
func ParseAnalysis(raw string) (Analysis, error) {
	value, err := jsonrepair.Parse(raw)
	if err != nil {
		return Analysis{}, err
	}
	analysis := Analysis{
		HookType:         stringOr(value, "hookType", DefaultHookType),
		StructureSummary: stringOr(value, "structureSummary", DefaultStructureSummary),
		KeyThemes:        keyThemes(value),
		SentimentArc:     sentimentArc(value),
	}
	return analysis, nil
}

func keyThemes(value jsonrepair.Value) []string {
	themes := make([]string, 0, maxKeyThemes)
	items, _ := value.ArrayField("keyThemes")
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		theme, ok := item.String()
		if !ok {
			continue
		}
		theme = strings.TrimSpace(theme)
		if theme == "" {
			continue
		}
		key := strings.ToLower(theme)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		themes = append(themes, theme)
		if len(themes) == maxKeyThemes {
			break
		}
	}
	return themes
}

func sentimentArc(value jsonrepair.Value) []SentimentPoint {
	items, _ := value.ArrayField("sentimentArc")
	points := make([]SentimentPoint, 0, len(items))
	for _, item := range items {
		timeField, okTime := item.Field("time")
		scoreField, okScore := item.Field("score")
		if !okTime || !okScore {
			continue
		}
		t, okTime := timeField.Float()
		score, okScore := scoreField.Float()
		if !okTime || !okScore {
			continue
		}
		points = append(points, SentimentPoint{Time: clamp(t, 0, 100), Score: clamp(score, -1, 1)})
	}
	return points
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

// ParseDNA normalises an Extract-DNA response.
func ParseDNA(raw string) (DNA, error) {
	value, err := jsonrepair.Parse(raw)
	if err != nil {
		return DNA{}, err
	}
	return DNA{
		PersonaName:  stringOr(value, "personaName", DefaultPersonaName),
		StyleSummary: stringOr(value, "styleSummary", DefaultStyleSummary),
		SystemPrompt: stringOr(value, "systemPrompt", ""),
	}, nil
}

// ParseStrategies normalises a Generate-Strategies response. Unrecognised
// shapes yield an empty list, not an error. Items that are not objects are
// dropped; missing or repeated ids become "strategy-N" by position, so every
// returned id is unique.
func ParseStrategies(raw string) ([]Strategy, Shape, error) {
	value, err := jsonrepair.Parse(raw)
	if err != nil {
		return nil, "", err
	}
	items, shape := strategyItems(value)
	strategies := make([]Strategy, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.Kind() != jsonrepair.KindObject {
			continue
		}
		position := len(strategies) + 1
		id := strategyID(item, position)
		for attempt := 1; seen[id]; attempt++ {
			id = fmt.Sprintf("strategy-%d", position)
			if attempt > 1 {
				id = fmt.Sprintf("strategy-%d-%d", position, attempt)
			}
		}
		seen[id] = true
		strategies = append(strategies, Strategy{
			ID:         id,
			Title:      stringOr(item, "title", ""),
			Concept:    stringOr(item, "concept", ""),
			WhyItWorks: stringOr(item, "whyItWorks", ""),
		})
	}
	return strategies, shape, nil
}

func strategyID(item jsonrepair.Value, position int) string {
	field, ok := item.Field("id")
	if ok {
		if s, ok := field.String(); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		if f, ok := field.Float(); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return fmt.Sprintf("strategy-%d", position)
}

// ParseScriptRows normalises a Generate-Script-Part response. The returned
// slice is never nil; an unrecognised shape yields no rows and
// ShapeUnrecognized so the caller can log it.
func ParseScriptRows(raw string) ([]Row, Shape, error) {
	value, err := jsonrepair.Parse(raw)
	if err != nil {
		return nil, "", err
	}
	items, shape := scriptItems(value)
	return rowsFrom(items), shape, nil
}
