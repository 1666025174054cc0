package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/mindpalace-backend/internal/types"
)

func testObjects(names ...string) []*types.RoomObject {
	roomID := uuid.New()
	out := make([]*types.RoomObject, 0, len(names))
	for i, name := range names {
		out = append(out, &types.RoomObject{
			ID:         uuid.New(),
			RoomID:     roomID,
			Name:       name,
			ObjectName: name,
			Position:   i,
		})
	}
	return out
}

func TestBuildAssociationsPairsByPosition(t *testing.T) {
	var mu sync.Mutex
	prompts := map[string]string{}
	groq := &fakeGroqClient{
		textFn: func(system, user string) (string, error) {
			// Echo both halves back so pairing is checkable, and keep the
			// full prompt per concept for inspection.
			var concept, object string
			for _, line := range strings.Split(user, "\n") {
				if strings.HasPrefix(line, "Concept: ") {
					concept = strings.TrimPrefix(line, "Concept: ")
				}
				if strings.HasPrefix(line, "Object: ") {
					object = strings.TrimPrefix(line, "Object: ")
				}
			}
			mu.Lock()
			prompts[concept] = user
			mu.Unlock()
			return fmt.Sprintf("Imagine %s on the %s.", concept, object), nil
		},
	}
	svc := NewAssociationService(groq, testLogger(t))

	concepts := []Concept{{Name: "Slope"}, {Name: "Intercept"}, {Name: "Function"}}
	objects := testObjects("lamp", "desk", "chair")
	for _, o := range objects {
		o.ObjectDescription = fmt.Sprintf("a %s near the window", o.ObjectName)
	}

	drafts := svc.BuildAssociations(context.Background(), concepts, objects)
	if len(drafts) != 3 {
		t.Fatalf("want 3 drafts, got %d", len(drafts))
	}
	for i, d := range drafts {
		if d.Concept != concepts[i].Name {
			t.Fatalf("draft %d concept: want=%q got=%q", i, concepts[i].Name, d.Concept)
		}
		if d.RoomObjectID != objects[i].ID {
			t.Fatalf("draft %d paired with wrong object", i)
		}
		if d.Position != i {
			t.Fatalf("draft %d position: want=%d got=%d", i, i, d.Position)
		}
		if !strings.Contains(d.Association, concepts[i].Name) || !strings.Contains(d.Association, objects[i].ObjectName) {
			t.Fatalf("draft %d association does not mention its pair: %q", i, d.Association)
		}
		wantDesc := "Object description: " + objects[i].ObjectDescription
		if !strings.Contains(prompts[concepts[i].Name], wantDesc) {
			t.Fatalf("draft %d prompt missing object description: %q", i, prompts[concepts[i].Name])
		}
	}
}

func TestBuildAssociationsFallsBackToLegacyDescription(t *testing.T) {
	var mu sync.Mutex
	var seen string
	groq := &fakeGroqClient{
		textFn: func(system, user string) (string, error) {
			mu.Lock()
			seen = user
			mu.Unlock()
			return "A vivid image.", nil
		},
	}
	svc := NewAssociationService(groq, testLogger(t))

	objects := testObjects("lamp")
	objects[0].Description = "a brass lamp with a green shade"

	svc.BuildAssociations(context.Background(), []Concept{{Name: "Slope"}}, objects)
	if !strings.Contains(seen, "Object description: a brass lamp with a green shade") {
		t.Fatalf("legacy description missing from prompt: %q", seen)
	}
}

func TestBuildAssociationsUsesMinLength(t *testing.T) {
	groq := &fakeGroqClient{
		textFn: func(system, user string) (string, error) {
			return "A vivid image.", nil
		},
	}
	svc := NewAssociationService(groq, testLogger(t))

	// More concepts than objects.
	drafts := svc.BuildAssociations(context.Background(),
		[]Concept{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		testObjects("lamp", "desk"))
	if len(drafts) != 2 {
		t.Fatalf("want 2 drafts, got %d", len(drafts))
	}

	// More objects than concepts.
	drafts = svc.BuildAssociations(context.Background(),
		[]Concept{{Name: "A"}},
		testObjects("lamp", "desk", "chair"))
	if len(drafts) != 1 {
		t.Fatalf("want 1 draft, got %d", len(drafts))
	}
}

func TestBuildAssociationsPerPairFailureUsesPlaceholder(t *testing.T) {
	groq := &fakeGroqClient{
		textFn: func(system, user string) (string, error) {
			if strings.Contains(user, "Concept: B") {
				return "", fmt.Errorf("model unavailable")
			}
			return "A vivid image.", nil
		},
	}
	svc := NewAssociationService(groq, testLogger(t))

	drafts := svc.BuildAssociations(context.Background(),
		[]Concept{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		testObjects("lamp", "desk", "chair"))
	if len(drafts) != 3 {
		t.Fatalf("want 3 drafts, got %d", len(drafts))
	}
	if drafts[0].Association != "A vivid image." {
		t.Fatalf("draft 0: %q", drafts[0].Association)
	}
	if drafts[1].Association != placeholderAssociation {
		t.Fatalf("failed pair should carry placeholder, got %q", drafts[1].Association)
	}
	if drafts[2].Association != "A vivid image." {
		t.Fatalf("draft 2: %q", drafts[2].Association)
	}
}

func TestBuildAssociationsAllFailStillReturnsFullSet(t *testing.T) {
	groq := &fakeGroqClient{
		textFn: func(system, user string) (string, error) {
			return "", fmt.Errorf("model down")
		},
	}
	svc := NewAssociationService(groq, testLogger(t))

	drafts := svc.BuildAssociations(context.Background(),
		[]Concept{{Name: "A"}, {Name: "B"}},
		testObjects("lamp", "desk"))
	if len(drafts) != 2 {
		t.Fatalf("want 2 drafts, got %d", len(drafts))
	}
	for i, d := range drafts {
		if d.Association != placeholderAssociation {
			t.Fatalf("draft %d: want placeholder, got %q", i, d.Association)
		}
	}
}

func TestSanitizeAssociation(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`  "Picture a lamp."  `, "Picture a lamp."},
		{"First line.\nSecond line.", "First line."},
		{"", ""},
	}
	for _, tc := range cases {
		if got := sanitizeAssociation(tc.in); got != tc.want {
			t.Fatalf("sanitize %q: want=%q got=%q", tc.in, tc.want, got)
		}
	}
	long := sanitizeAssociation(strings.Repeat("a", 1000))
	if len(long) > 400 {
		t.Fatalf("long association not capped: len=%d", len(long))
	}
}
