package testsupport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"scriptdna/internal/generation"
	"scriptdna/internal/stages"
)

// Canned stage responses in the shapes the models return.
const (
	AnalysisJSON   = `{"hookType":"Greeting","structureSummary":"Intro then build.","keyThemes":["woodworking","thrift"],"sentimentArc":[{"time":0,"score":0.5}]}`
	DNAJSON        = `{"personaName":"The Workshop Host","styleSummary":"Warm and practical.","systemPrompt":"Speak like a friendly carpenter."}`
	StrategiesJSON = `[{"id":"s1","title":"Build a Shed","concept":"A weekend shed.","whyItWorks":"Big payoff."},{"id":"s2","title":"Fix a Chair","concept":"Repair basics.","whyItWorks":"Relatable."}]`
)

// ScriptJSON returns a two-paragraph script part.
func ScriptJSON(part int) string {
	return fmt.Sprintf(`[{"text":"Part %d opening."},{"text":"Part %d closing."}]`, part, part)
}

// StageGenerator answers every stage with canned JSON and records requests.
// Errors, when set for a stage, are returned instead; Responses replace the
// canned JSON for a stage.
type StageGenerator struct {
	mu        sync.Mutex
	Requests  []generation.Request
	Errors    map[string]error
	Responses map[string]string
	parts     int
}

var _ generation.Generator = (*StageGenerator)(nil)

func (g *StageGenerator) Generate(_ context.Context, req generation.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if err := g.Errors[req.Stage]; err != nil {
		return "", err
	}
	if content, ok := g.Responses[req.Stage]; ok {
		return content, nil
	}
	if req.Stage == stages.StageScript {
		g.parts++
		return ScriptJSON(g.parts), nil
	}
	return stageResponse(req.Stage), nil
}

// Count returns the number of requests seen for stage.
func (g *StageGenerator) Count(stage string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, req := range g.Requests {
		if req.Stage == stage {
			n++
		}
	}
	return n
}

func stageResponse(stage string) string {
	switch stage {
	case stages.StageAnalyze:
		return AnalysisJSON
	case stages.StageDNA:
		return DNAJSON
	case stages.StageStrategies:
		return StrategiesJSON
	default:
		return `{"ok":true}`
	}
}

// ChatServerOption adjusts a fake chat server.
type ChatServerOption func(map[string]string)

// WithStageResponse makes the server answer stage with content.
func WithStageResponse(stage, content string) ChatServerOption {
	return func(overrides map[string]string) {
		overrides[stage] = content
	}
}

// NewChatServer serves OpenRouter-style chat completions, answering each
// request with the canned response for the stage its prompt belongs to.
func NewChatServer(t testing.TB, opts ...ChatServerOption) *httptest.Server {
	t.Helper()

	overrides := make(map[string]string)
	for _, opt := range opts {
		opt(overrides)
	}

	var mu sync.Mutex
	parts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var prompt strings.Builder
		for _, m := range req.Messages {
			prompt.WriteString(m.Content)
		}
		stage := stageForPrompt(prompt.String())
		content, overridden := overrides[stage]
		if !overridden {
			content = stageResponse(stage)
		}
		if stage == stages.StageScript && !overridden {
			mu.Lock()
			parts++
			content = ScriptJSON(parts)
			mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{
				"message":       map[string]any{"content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func stageForPrompt(prompt string) string {
	markers := []struct {
		stage  string
		prompt string
	}{
		{stages.StageAnalyze, stages.AnalyzePrompt},
		{stages.StageDNA, stages.DNAPrompt},
		{stages.StageStrategies, stages.StrategiesPrompt},
		{stages.StageScript, stages.ScriptPrompt},
	}
	for _, m := range markers {
		firstLine, _, _ := strings.Cut(m.prompt, "\n")
		if strings.Contains(prompt, firstLine) {
			return m.stage
		}
	}
	return ""
}
