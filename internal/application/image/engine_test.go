package image

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"story-scene-api/internal/workflow/port"
	apperrors "story-scene-api/pkg/errors"
)

func TestEngineRejectsBlankPromptWithoutUpstreamCall(t *testing.T) {
	fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
		t.Fatalf("upstream must not be called for blank prompt")
		return nil, nil
	}}
	engine := NewEngine(fake, t.TempDir(), "http://localhost:8080", "3:4")

	_, _, err := engine.Generate(context.Background(), "story-1", "Cinematic", ScenePlan{
		SceneNumber:     1,
		SceneText:       "   \t\n",
		CinematicPrompt: "",
	}, nil)

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidationFailed {
		t.Errorf("expected CodeValidationFailed, got %s", appErr.Code)
	}
	if fake.calls != 0 {
		t.Errorf("expected zero upstream calls, got %d", fake.calls)
	}
}

func TestEngineFallsBackToSceneText(t *testing.T) {
	data := pngBytes(t)
	var gotPrompt string
	fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
		gotPrompt = parts[len(parts)-1].Text
		return nestedResponse(data), nil
	}}
	engine := NewEngine(fake, t.TempDir(), "http://localhost:8080", "3:4")

	_, _, err := engine.Generate(context.Background(), "story-1", "Cinematic", ScenePlan{
		SceneNumber: 1,
		SceneText:   "the keeper lights the lamp",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotPrompt, "the keeper lights the lamp") {
		t.Errorf("scene text not used as prompt fallback: %q", gotPrompt)
	}
}

func TestEngineWritesFileAndReturnsContinuity(t *testing.T) {
	data := pngBytes(t)
	fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
		return nestedResponse(data), nil
	}}
	dir := t.TempDir()
	engine := NewEngine(fake, dir, "http://localhost:8080/", "3:4")

	generated, next, err := engine.Generate(context.Background(), "abc123", "Noir", ScenePlan{
		SceneNumber:     3,
		CinematicPrompt: "storm over the cliff",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantPath := filepath.Join(dir, "scene_abc123_03.png")
	if generated.FilePath != wantPath {
		t.Errorf("file path = %q, want %q", generated.FilePath, wantPath)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Errorf("image file not written: %v", err)
	}
	if generated.FileURL != "http://localhost:8080/images/scene_abc123_03.png" {
		t.Errorf("unexpected file URL: %q", generated.FileURL)
	}

	if next == nil || next.MIMEType != "image/jpeg" || len(next.Data) == 0 {
		t.Fatalf("continuity image must be JPEG encoded, got %+v", next)
	}
}

func TestEngineKeepsPreviousContinuityOnFailure(t *testing.T) {
	fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
		return &port.ImageResponse{Parts: []*port.ImagePart{{Text: "no image"}}}, nil
	}}
	engine := NewEngine(fake, t.TempDir(), "http://localhost:8080", "3:4")

	prev := &PreviousImage{Data: []byte{0xFF, 0xD8, 0xFF}, MIMEType: "image/jpeg"}
	_, next, err := engine.Generate(context.Background(), "story-1", "Cinematic", ScenePlan{
		SceneNumber:     2,
		CinematicPrompt: "a scene",
	}, prev)

	if err == nil {
		t.Fatalf("expected error")
	}
	if next != prev {
		t.Errorf("failed generation must not advance continuity state")
	}
}
