package image

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"story-scene-api/internal/workflow/port"
)

func scenePlans(n int) []ScenePlan {
	scenes := make([]ScenePlan, 0, n)
	for i := 1; i <= n; i++ {
		scenes = append(scenes, ScenePlan{
			SceneNumber:     i,
			SceneText:       "scene text",
			CinematicPrompt: "cinematic prompt",
		})
	}
	return scenes
}

func TestCoordinatorAbortsOnRateLimitKeepingPartials(t *testing.T) {
	data := pngBytes(t)
	fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
		if call == 3 {
			return nil, errors.New("429 rate limit exceeded")
		}
		return nestedResponse(data), nil
	}}
	coord := NewCoordinator(NewEngine(fake, t.TempDir(), "http://localhost:8080", "3:4"))

	result := coord.Run(context.Background(), "story-1", "Cinematic", scenePlans(5), nil)

	if !result.RateLimited {
		t.Fatalf("expected rate limited batch")
	}
	if result.Completed != 2 || len(result.Generated) != 2 {
		t.Errorf("expected 2 completed scenes before abort, got %d", result.Completed)
	}
	if fake.calls != 3 {
		t.Errorf("no scene after the rate limit may be attempted, upstream calls = %d", fake.calls)
	}
	if result.Total != 5 || !result.Partial() {
		t.Errorf("expected partial result 2/5")
	}
}

func TestCoordinatorSkipsFailedScenesAndContinues(t *testing.T) {
	data := pngBytes(t)
	fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
		if call == 2 || call == 4 {
			return nil, errors.New("upstream hiccup")
		}
		return nestedResponse(data), nil
	}}
	coord := NewCoordinator(NewEngine(fake, t.TempDir(), "http://localhost:8080", "3:4"))

	result := coord.Run(context.Background(), "story-1", "Cinematic", scenePlans(5), nil)

	if result.RateLimited {
		t.Fatalf("batch must not be marked rate limited")
	}
	if result.Completed != 3 {
		t.Errorf("expected 3 completed scenes, got %d", result.Completed)
	}
	if len(result.FailedScenes) != 2 || result.FailedScenes[0] != 2 || result.FailedScenes[1] != 4 {
		t.Errorf("failed scenes = %v, want [2 4]", result.FailedScenes)
	}
	for i, g := range result.Generated {
		want := []int{1, 3, 5}[i]
		if g.SceneNumber != want {
			t.Errorf("generated[%d].SceneNumber = %d, want %d", i, g.SceneNumber, want)
		}
	}
}

func TestCoordinatorContinuityReferencesLastSuccess(t *testing.T) {
	data := pngBytes(t)
	var refs []*port.ImageBlob
	fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
		if parts[0].InlineData != nil {
			refs = append(refs, parts[0].InlineData)
		} else {
			refs = append(refs, nil)
		}
		if call == 2 {
			return nil, errors.New("upstream hiccup")
		}
		return nestedResponse(data), nil
	}}
	coord := NewCoordinator(NewEngine(fake, t.TempDir(), "http://localhost:8080", "3:4"))

	result := coord.Run(context.Background(), "story-1", "Cinematic", scenePlans(3), nil)
	if result.Completed != 2 {
		t.Fatalf("expected 2 completed scenes, got %d", result.Completed)
	}

	if refs[0] != nil {
		t.Errorf("first scene must not carry a reference image")
	}
	if refs[1] == nil || refs[2] == nil {
		t.Fatalf("later scenes must carry a reference image")
	}
	// 场景 2 失败后，场景 3 仍引用场景 1 的输出
	if !bytes.Equal(refs[1].Data, refs[2].Data) {
		t.Errorf("scene 3 must reference the last successful image, not the failed attempt")
	}
}

func TestCoordinatorProcessesInAscendingOrder(t *testing.T) {
	data := pngBytes(t)
	var order []int
	fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
		return nestedResponse(data), nil
	}}
	engine := NewEngine(fake, t.TempDir(), "http://localhost:8080", "3:4")
	coord := NewCoordinator(engine)

	shuffled := []ScenePlan{
		{SceneNumber: 3, CinematicPrompt: "c"},
		{SceneNumber: 1, CinematicPrompt: "a"},
		{SceneNumber: 2, CinematicPrompt: "b"},
	}
	result := coord.Run(context.Background(), "story-1", "Cinematic", shuffled, nil)

	for _, g := range result.Generated {
		order = append(order, g.SceneNumber)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("scenes processed out of order: %v", order)
	}
}

func TestCoordinatorSinkCalledPerSuccess(t *testing.T) {
	data := pngBytes(t)
	fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
		if call == 2 {
			return nil, errors.New("upstream hiccup")
		}
		return nestedResponse(data), nil
	}}
	coord := NewCoordinator(NewEngine(fake, t.TempDir(), "http://localhost:8080", "3:4"))

	var committed []int
	coord.Run(context.Background(), "story-1", "Cinematic", scenePlans(3), func(_ context.Context, img GeneratedImage) {
		committed = append(committed, img.SceneNumber)
	})

	if len(committed) != 2 || committed[0] != 1 || committed[1] != 3 {
		t.Errorf("sink calls = %v, want [1 3]", committed)
	}
}
