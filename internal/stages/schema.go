package stages

import "scriptdna/internal/generation"

func analysisSchema() *generation.Schema {
	return generation.Object(map[string]*generation.Schema{
		"hookType":         generation.String("style of the opening seconds"),
		"structureSummary": generation.String("narrative structure in one or two sentences"),
		"keyThemes":        generation.ArrayOf(generation.String("")),
		"sentimentArc": generation.ArrayOf(generation.Object(map[string]*generation.Schema{
			"time":  generation.Number("percentage through the transcript, 0-100"),
			"score": generation.Number("sentiment from -1 to 1"),
		})),
	})
}

func dnaSchema() *generation.Schema {
	return generation.Object(map[string]*generation.Schema{
		"personaName":  generation.String(""),
		"styleSummary": generation.String(""),
		"systemPrompt": generation.String(""),
	})
}

func strategiesSchema() *generation.Schema {
	return generation.ArrayOf(generation.Object(map[string]*generation.Schema{
		"id":         generation.String(""),
		"title":      generation.String(""),
		"concept":    generation.String(""),
		"whyItWorks": generation.String(""),
	}))
}

func scriptRowsSchema() *generation.Schema {
	return generation.ArrayOf(generation.Object(map[string]*generation.Schema{
		"text": generation.String("one paragraph of narration"),
	}))
}
