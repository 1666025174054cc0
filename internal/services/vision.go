package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/mindpalace-backend/internal/logger"
)

// DetectedObject is one item the vision model found in a room photo.
type DetectedObject struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// VisionService reads room photos: it lists the distinct physical
// objects visible in an image so they can become memory anchors.
type VisionService interface {
	DetectRoomObjects(ctx context.Context, imageURL string, maxObjects int) ([]DetectedObject, error)
}

type visionService struct {
	log  *logger.Logger
	groq GroqClient
}

func NewVisionService(groq GroqClient, baseLog *logger.Logger) VisionService {
	serviceLog := baseLog.With("service", "VisionService")
	return &visionService{log: serviceLog, groq: groq}
}

func (s *visionService) DetectRoomObjects(ctx context.Context, imageURL string, maxObjects int) ([]DetectedObject, error) {
	if maxObjects <= 0 {
		maxObjects = 10
	}
	prompt := fmt.Sprintf(`List up to %d distinct physical objects visible in this room photo.
Respond with JSON only: {"objects": [{"name": "...", "description": "..."}]}.
Names are short (1-3 words). Descriptions are one short sentence about the object's appearance and location.`, maxObjects)

	raw, err := s.groq.AnalyzeImageJSON(ctx, prompt, imageURL, GenOptions{Temperature: 0.3})
	if err != nil {
		return nil, fmt.Errorf("vision analyze: %w", err)
	}

	objects, err := parseDetectedObjects(raw)
	if err != nil {
		return nil, err
	}
	if len(objects) > maxObjects {
		objects = objects[:maxObjects]
	}
	return objects, nil
}

func parseDetectedObjects(raw string) ([]DetectedObject, error) {
	var wrapper struct {
		Objects []DetectedObject `json:"objects"`
		Items   []DetectedObject `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapper); err == nil {
		if len(wrapper.Objects) > 0 {
			return cleanDetected(wrapper.Objects), nil
		}
		if len(wrapper.Items) > 0 {
			return cleanDetected(wrapper.Items), nil
		}
	}

	// Some responses come back as a bare array.
	var list []DetectedObject
	if err := json.Unmarshal([]byte(raw), &list); err == nil && len(list) > 0 {
		return cleanDetected(list), nil
	}

	return nil, fmt.Errorf("no objects found in vision response")
}

func cleanDetected(in []DetectedObject) []DetectedObject {
	out := make([]DetectedObject, 0, len(in))
	for _, o := range in {
		o.Name = strings.TrimSpace(o.Name)
		o.Description = strings.TrimSpace(o.Description)
		if o.Name == "" {
			continue
		}
		out = append(out, o)
	}
	return out
}
