package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/types"
)

// AssociationDraft is one generated mnemonic before it is persisted.
// Position mirrors the room object's position so display order is stable.
type AssociationDraft struct {
	RoomObjectID       uuid.UUID
	ObjectName         string
	Concept            string
	ConceptDescription string
	Association        string
	Position           int
}

// placeholderAssociation is used when generation for a single pair
// fails after retries. The pair still ships, just without a story.
const placeholderAssociation = "Picture this object and link it to the concept in your own words."

// AssociationService turns (concept, object) pairs into vivid one-line
// mnemonics. Pairing is positional: concept i goes with object i, and
// the output covers min(len(concepts), len(objects)) pairs.
type AssociationService interface {
	BuildAssociations(ctx context.Context, concepts []Concept, objects []*types.RoomObject) []AssociationDraft
}

type associationService struct {
	log  *logger.Logger
	groq GroqClient
}

func NewAssociationService(groq GroqClient, baseLog *logger.Logger) AssociationService {
	serviceLog := baseLog.With("service", "AssociationService")
	return &associationService{log: serviceLog, groq: groq}
}

const associationSystemPrompt = `You create vivid memory-palace associations.
Given a concept and a physical object in a room, write ONE short, concrete,
visual sentence that ties the concept to the object. Respond with the sentence
only, no preamble and no quotes.`

func (s *associationService) BuildAssociations(ctx context.Context, concepts []Concept, objects []*types.RoomObject) []AssociationDraft {
	n := len(concepts)
	if len(objects) < n {
		n = len(objects)
	}
	if n == 0 {
		return []AssociationDraft{}
	}

	drafts := make([]AssociationDraft, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			concept := concepts[i]
			object := objects[i]

			objectName := object.ObjectName
			if objectName == "" {
				objectName = object.Name
			}
			objectDescription := object.ObjectDescription
			if objectDescription == "" {
				objectDescription = object.Description
			}

			text, err := s.generateOne(gctx, concept, objectName, objectDescription)
			if err != nil {
				s.log.Warn("Association generation failed for pair, using placeholder",
					"position", i, "concept", concept.Name, "object", objectName, "error", err)
				text = placeholderAssociation
			}

			drafts[i] = AssociationDraft{
				RoomObjectID:       object.ID,
				ObjectName:         objectName,
				Concept:            concept.Name,
				ConceptDescription: concept.Description,
				Association:        text,
				Position:           object.Position,
			}
			return nil
		})
	}
	// Workers never return errors, per-pair failures degrade to placeholders.
	_ = g.Wait()

	return drafts
}

func (s *associationService) generateOne(ctx context.Context, concept Concept, objectName, objectDescription string) (string, error) {
	user := fmt.Sprintf("Concept: %s", concept.Name)
	if concept.Description != "" {
		user += fmt.Sprintf(" (%s)", concept.Description)
	}
	user += fmt.Sprintf("\nObject: %s", objectName)
	if objectDescription != "" {
		user += fmt.Sprintf("\nObject description: %s", objectDescription)
	}

	text, err := s.groq.GenerateText(ctx, associationSystemPrompt, user, GenOptions{Temperature: 0.8})
	if err != nil {
		return "", err
	}
	text = sanitizeAssociation(text)
	if text == "" {
		return "", fmt.Errorf("empty association after sanitizing")
	}
	return text, nil
}

// sanitizeAssociation collapses the model output to a single trimmed
// sentence-ish line, capped at 400 chars.
func sanitizeAssociation(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"'`)
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	if len(text) > 400 {
		text = strings.TrimSpace(text[:400])
	}
	return text
}
