package services

import (
	"context"
	"testing"
)

func TestDetectRoomObjectsParsesWrapper(t *testing.T) {
	groq := &fakeGroqClient{
		visionFn: func(prompt, imageURL string) (string, error) {
			return `{"objects": [
				{"name": "lamp", "description": "brass lamp on the desk"},
				{"name": "bookshelf", "description": "tall shelf by the window"}
			]}`, nil
		},
	}
	svc := NewVisionService(groq, testLogger(t))

	got, err := svc.DetectRoomObjects(context.Background(), "https://x/room.jpg", 10)
	if err != nil {
		t.Fatalf("DetectRoomObjects: %v", err)
	}
	if len(got) != 2 || got[0].Name != "lamp" || got[1].Name != "bookshelf" {
		t.Fatalf("unexpected detections: %+v", got)
	}
}

func TestDetectRoomObjectsCapsAtMax(t *testing.T) {
	groq := &fakeGroqClient{
		visionFn: func(prompt, imageURL string) (string, error) {
			return `{"objects": [{"name": "a"}, {"name": "b"}, {"name": "c"}]}`, nil
		},
	}
	svc := NewVisionService(groq, testLogger(t))

	got, err := svc.DetectRoomObjects(context.Background(), "https://x/room.jpg", 2)
	if err != nil {
		t.Fatalf("DetectRoomObjects: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 detections, got %d", len(got))
	}
}

func TestDetectRoomObjectsBareArray(t *testing.T) {
	groq := &fakeGroqClient{
		visionFn: func(prompt, imageURL string) (string, error) {
			return `[{"name": "desk"}]`, nil
		},
	}
	svc := NewVisionService(groq, testLogger(t))

	got, err := svc.DetectRoomObjects(context.Background(), "https://x/room.jpg", 5)
	if err != nil {
		t.Fatalf("DetectRoomObjects: %v", err)
	}
	if len(got) != 1 || got[0].Name != "desk" {
		t.Fatalf("unexpected detections: %+v", got)
	}
}

func TestDetectRoomObjectsEmptyResponseErrors(t *testing.T) {
	groq := &fakeGroqClient{
		visionFn: func(prompt, imageURL string) (string, error) {
			return `{"objects": []}`, nil
		},
	}
	svc := NewVisionService(groq, testLogger(t))

	if _, err := svc.DetectRoomObjects(context.Background(), "https://x/room.jpg", 5); err == nil {
		t.Fatalf("expected error for empty detection set")
	}
}
