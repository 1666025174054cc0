package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yungbote/mindpalace-backend/internal/logger"
)

// Concept is one extractable study item from the floor's source text.
type Concept struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ConceptService extracts exactly N concepts from source text. It never
// returns an error: model failures and malformed output degrade to
// placeholder concepts so downstream pairing always has N items.
type ConceptService interface {
	ExtractConcepts(ctx context.Context, sourceText string, n int) []Concept
}

type conceptService struct {
	log  *logger.Logger
	groq GroqClient
}

func NewConceptService(groq GroqClient, baseLog *logger.Logger) ConceptService {
	serviceLog := baseLog.With("service", "ConceptService")
	return &conceptService{log: serviceLog, groq: groq}
}

const maxSourceChars = 15000

const conceptSystemPrompt = `You extract the most important concepts from study material.
Respond with JSON only: an object of the form {"concepts": [{"name": "...", "description": "..."}]}.
Each name is a short term (1-5 words). Each description is one sentence explaining the concept.`

func (s *conceptService) ExtractConcepts(ctx context.Context, sourceText string, n int) []Concept {
	if n <= 0 {
		return []Concept{}
	}

	source := sourceText
	if len(source) > maxSourceChars {
		// Back up to a rune boundary so the cut never splits a
		// multi-byte character.
		cut := maxSourceChars
		for cut > 0 && !utf8.RuneStart(source[cut]) {
			cut--
		}
		source = source[:cut]
	}

	userPrompt := fmt.Sprintf(
		"Extract exactly %d key concepts from the following material.\n\n%s",
		n, source,
	)

	raw, err := s.groq.GenerateJSON(ctx, conceptSystemPrompt, userPrompt, GenOptions{Temperature: 0.7})
	if err != nil {
		s.log.Warn("Concept extraction call failed, using placeholders", "error", err)
		return padConcepts(nil, n)
	}

	concepts := parseConcepts(raw)
	if len(concepts) > n {
		concepts = concepts[:n]
	}
	if len(concepts) < n {
		s.log.Warn("Concept extraction returned fewer than requested",
			"requested", n, "parsed", len(concepts))
	}
	return padConcepts(concepts, n)
}

// parseConcepts is deliberately lenient about the shapes models produce.
// It tries, in order: a direct JSON array, a bracketed substring, a
// "concepts"/"items" key inside an object, and finally harvesting any
// string values from an object.
func parseConcepts(raw string) []Concept {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if out := decodeConceptList(raw); out != nil {
		return out
	}

	// Models sometimes wrap the array in prose. Take the outermost
	// bracketed substring and retry.
	if start, end := strings.Index(raw, "["), strings.LastIndex(raw, "]"); start >= 0 && end > start {
		if out := decodeConceptList(raw[start : end+1]); out != nil {
			return out
		}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil
	}
	for _, key := range []string{"concepts", "items"} {
		if inner, ok := obj[key]; ok {
			if out := decodeConceptList(string(inner)); out != nil {
				return out
			}
		}
	}

	// Last resort: treat every string value in the object as a concept name.
	var loose map[string]any
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		return nil
	}
	var out []Concept
	for _, v := range loose {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, Concept{Name: strings.TrimSpace(s)})
		}
	}
	return out
}

func decodeConceptList(raw string) []Concept {
	var items []map[string]any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// Also accept a bare array of strings.
		var names []string
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			return nil
		}
		out := make([]Concept, 0, len(names))
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				continue
			}
			out = append(out, Concept{Name: strings.TrimSpace(name)})
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}

	var out []Concept
	for _, item := range items {
		c := Concept{
			Name:        stringField(item, "name", "concept", "term", "title"),
			Description: stringField(item, "description", "explanation", "summary"),
		}
		if c.Name == "" {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// padConcepts tops the list up to exactly n with numbered placeholders.
func padConcepts(concepts []Concept, n int) []Concept {
	for i := len(concepts); i < n; i++ {
		concepts = append(concepts, Concept{
			Name:        fmt.Sprintf("Key concept %d", i+1),
			Description: "",
		})
	}
	return concepts
}
