package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractConceptsReturnsExactlyN(t *testing.T) {
	groq := &fakeGroqClient{
		jsonFn: func(system, user string) (string, error) {
			return `{"concepts": [
				{"name": "Slope", "description": "steepness of a line"},
				{"name": "Intercept", "description": "where the line crosses an axis"},
				{"name": "Function", "description": "maps inputs to outputs"}
			]}`, nil
		},
	}
	svc := NewConceptService(groq, testLogger(t))

	got := svc.ExtractConcepts(context.Background(), "algebra notes", 3)
	if len(got) != 3 {
		t.Fatalf("want 3 concepts, got %d", len(got))
	}
	if got[0].Name != "Slope" || got[2].Name != "Function" {
		t.Fatalf("unexpected concepts: %+v", got)
	}
}

func TestExtractConceptsTruncatesSurplus(t *testing.T) {
	groq := &fakeGroqClient{
		jsonFn: func(system, user string) (string, error) {
			return `{"concepts": [{"name": "A"}, {"name": "B"}, {"name": "C"}, {"name": "D"}]}`, nil
		},
	}
	svc := NewConceptService(groq, testLogger(t))

	got := svc.ExtractConcepts(context.Background(), "notes", 2)
	if len(got) != 2 {
		t.Fatalf("want 2 concepts, got %d", len(got))
	}
	if got[0].Name != "A" || got[1].Name != "B" {
		t.Fatalf("unexpected truncation: %+v", got)
	}
}

func TestExtractConceptsPadsShortfallWithPlaceholders(t *testing.T) {
	groq := &fakeGroqClient{
		jsonFn: func(system, user string) (string, error) {
			return `{"concepts": [{"name": "Only One"}]}`, nil
		},
	}
	svc := NewConceptService(groq, testLogger(t))

	got := svc.ExtractConcepts(context.Background(), "notes", 3)
	if len(got) != 3 {
		t.Fatalf("want 3 concepts, got %d", len(got))
	}
	if got[1].Name != "Key concept 2" || got[2].Name != "Key concept 3" {
		t.Fatalf("placeholders missing: %+v", got)
	}
}

func TestExtractConceptsModelErrorDegradesToPlaceholders(t *testing.T) {
	groq := &fakeGroqClient{
		jsonFn: func(system, user string) (string, error) {
			return "", fmt.Errorf("rate limited")
		},
	}
	svc := NewConceptService(groq, testLogger(t))

	got := svc.ExtractConcepts(context.Background(), "notes", 2)
	if len(got) != 2 {
		t.Fatalf("want 2 concepts, got %d", len(got))
	}
	for i, c := range got {
		want := fmt.Sprintf("Key concept %d", i+1)
		if c.Name != want {
			t.Fatalf("placeholder %d: want=%q got=%q", i, want, c.Name)
		}
	}
}

func TestExtractConceptsTruncatesLongSource(t *testing.T) {
	var seenLen int
	groq := &fakeGroqClient{
		jsonFn: func(system, user string) (string, error) {
			seenLen = len(user)
			return `{"concepts": [{"name": "A"}]}`, nil
		},
	}
	svc := NewConceptService(groq, testLogger(t))

	long := strings.Repeat("x", 40000)
	svc.ExtractConcepts(context.Background(), long, 1)
	// Prompt preamble adds a little, but the source itself is capped.
	if seenLen > maxSourceChars+200 {
		t.Fatalf("source not truncated: prompt len=%d", seenLen)
	}
}

func TestExtractConceptsTruncatesOnRuneBoundary(t *testing.T) {
	var seen string
	groq := &fakeGroqClient{
		jsonFn: func(system, user string) (string, error) {
			seen = user
			return `{"concepts": [{"name": "A"}]}`, nil
		},
	}
	svc := NewConceptService(groq, testLogger(t))

	// A one-byte prefix shifts every 3-byte rune off the cut offset, so a
	// byte-index slice would split one in half.
	long := "a" + strings.Repeat("気", 10000)
	svc.ExtractConcepts(context.Background(), long, 1)
	if !utf8.ValidString(seen) {
		t.Fatalf("truncation split a rune, prompt is not valid utf-8")
	}
	if len(seen) > maxSourceChars+200 {
		t.Fatalf("source not truncated: prompt len=%d", len(seen))
	}
}

func TestExtractConceptsNonJSONResponseDegradesToPlaceholders(t *testing.T) {
	groq := &fakeGroqClient{
		jsonFn: func(system, user string) (string, error) {
			return "not json at all", nil
		},
	}
	svc := NewConceptService(groq, testLogger(t))

	got := svc.ExtractConcepts(context.Background(), "notes", 3)
	if len(got) != 3 {
		t.Fatalf("want 3 concepts, got %d", len(got))
	}
	for i, c := range got {
		want := fmt.Sprintf("Key concept %d", i+1)
		if c.Name != want {
			t.Fatalf("placeholder %d: want=%q got=%q", i, want, c.Name)
		}
	}
}

func TestParseConceptsLenientShapes(t *testing.T) {
	cases := []struct {
		label string
		raw   string
		want  []string
	}{
		{
			"direct array",
			`[{"name": "A"}, {"name": "B"}]`,
			[]string{"A", "B"},
		},
		{
			"array of strings",
			`["A", "B"]`,
			[]string{"A", "B"},
		},
		{
			"bracketed substring in prose",
			`Here are your concepts: [{"name": "A"}] hope that helps!`,
			[]string{"A"},
		},
		{
			"concepts key",
			`{"concepts": [{"name": "A"}]}`,
			[]string{"A"},
		},
		{
			"items key",
			`{"items": [{"name": "A"}]}`,
			[]string{"A"},
		},
		{
			"alternate field names",
			`{"concepts": [{"concept": "A", "explanation": "about A"}]}`,
			[]string{"A"},
		},
		{
			"harvest string values",
			`{"first": "A"}`,
			[]string{"A"},
		},
	}
	for _, tc := range cases {
		got := parseConcepts(tc.raw)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: want %d concepts, got %d (%+v)", tc.label, len(tc.want), len(got), got)
		}
		for i, name := range tc.want {
			if got[i].Name != name {
				t.Fatalf("%s: index %d want=%q got=%q", tc.label, i, name, got[i].Name)
			}
		}
	}
}

func TestParseConceptsGarbageReturnsNil(t *testing.T) {
	for _, raw := range []string{"", "not json at all", "12345"} {
		if got := parseConcepts(raw); got != nil {
			t.Fatalf("raw=%q: want nil, got %+v", raw, got)
		}
	}
}
