package story

import (
	"context"
	"errors"
	"strings"
	"testing"

	storymodel "story-scene-api/internal/application/story/model"
	wfmodel "story-scene-api/internal/workflow/model"
)

// fakeAnalyzer 每步可独立注入失败
type fakeAnalyzer struct {
	classifyErr error
	classify    *wfmodel.ClassifyResult

	titleErr error
	title    string

	scenesErr error
	scenes    []wfmodel.ScenePlanItem

	patternsErr error
	patterns    *wfmodel.PatternResult

	summaryErr error
	summary    string
}

func (f *fakeAnalyzer) Classify(ctx context.Context, text string) (*wfmodel.ClassifyResult, error) {
	return f.classify, f.classifyErr
}

func (f *fakeAnalyzer) GenerateTitle(ctx context.Context, text string) (string, error) {
	return f.title, f.titleErr
}

func (f *fakeAnalyzer) GenerateScenes(ctx context.Context, text string, maxScenes int) ([]wfmodel.ScenePlanItem, error) {
	return f.scenes, f.scenesErr
}

func (f *fakeAnalyzer) DetectPatterns(ctx context.Context, scenes []wfmodel.ScenePlanItem) (*wfmodel.PatternResult, error) {
	return f.patterns, f.patternsErr
}

func (f *fakeAnalyzer) Summarize(ctx context.Context, text, kind string) (string, error) {
	return f.summary, f.summaryErr
}

func healthyAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{
		classify: &wfmodel.ClassifyResult{Genre: "Fantasy", Style: "Anime", Confidence: 0.9},
		title:    "The Lighthouse Keeper",
		scenes: []wfmodel.ScenePlanItem{
			{SceneNumber: 1, SceneText: strings.Repeat("a", 120), CinematicPrompt: "wide shot of the lighthouse"},
			{SceneNumber: 2, SceneText: "The keeper climbs.", CinematicPrompt: "close up on weathered hands"},
			{SceneNumber: 3, SceneText: "The lamp is lit.", CinematicPrompt: "warm light floods the lens"},
		},
		patterns: &wfmodel.PatternResult{VisualConsistencyScore: 0.8},
		summary:  "A keeper tends a lighthouse through a storm.",
	}
}

func TestGenerateFullPipeline(t *testing.T) {
	g := NewGenerator(healthyAnalyzer())

	result := g.Generate(context.Background(), "An old keeper tends a remote lighthouse.", 8)

	if result.Status != storymodel.GenerationStatusCompleted {
		t.Fatalf("expected completed status, got %s", result.Status)
	}
	if result.Genre != "Fantasy" || result.Style != "Anime" {
		t.Errorf("classification not applied: %s/%s", result.Genre, result.Style)
	}
	if result.Title != "The Lighthouse Keeper" || result.OriginalTitle != result.Title {
		t.Errorf("title not propagated: %q / %q", result.Title, result.OriginalTitle)
	}
	if len(result.Scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d", len(result.Scenes))
	}
	if result.Summary == "" || result.Summary == "Story summary unavailable" {
		t.Errorf("summary must come from the analyzer: %q", result.Summary)
	}
	if result.Patterns == nil {
		t.Errorf("patterns missing")
	}

	// 固定置信度与按文本长度封顶的完整度
	if result.Scenes[0].ConfidenceScore != 0.8 {
		t.Errorf("confidence = %v, want 0.8", result.Scenes[0].ConfidenceScore)
	}
	if result.Scenes[0].CompletenessScore != 1.0 {
		t.Errorf("long scene completeness = %v, want 1.0", result.Scenes[0].CompletenessScore)
	}
	if s := result.Scenes[1].CompletenessScore; s <= 0 || s >= 1.0 {
		t.Errorf("short scene completeness = %v, want in (0,1)", s)
	}
}

func TestGenerateClassificationFailureUsesDefaults(t *testing.T) {
	analyzer := healthyAnalyzer()
	analyzer.classifyErr = errors.New("model unavailable")
	g := NewGenerator(analyzer)

	result := g.Generate(context.Background(), "Some story.", 8)

	if result.Status != storymodel.GenerationStatusCompleted {
		t.Fatalf("classification failure must not fail the pipeline")
	}
	if result.Genre != "Drama" || result.Style != "Cinematic" {
		t.Errorf("defaults not applied: %s/%s", result.Genre, result.Style)
	}
}

func TestGenerateTitleFallback(t *testing.T) {
	analyzer := healthyAnalyzer()
	analyzer.titleErr = errors.New("title model down")
	g := NewGenerator(analyzer)

	result := g.Generate(context.Background(), "one two three four five six seven eight", 8)

	if result.Title != "one two three four five six..." {
		t.Errorf("fallback title = %q", result.Title)
	}
}

func TestFallbackTitleShortPrompt(t *testing.T) {
	if got := FallbackTitle("just five little words here"); got != "just five little words here" {
		t.Errorf("short prompt must be kept verbatim, got %q", got)
	}
}

func TestFallbackTitleCappedAt50(t *testing.T) {
	long := strings.Repeat("verylongword ", 7)
	got := FallbackTitle(long)
	if len([]rune(got)) > 50 {
		t.Errorf("fallback title too long: %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("capped title must end with ellipsis: %q", got)
	}
}

func TestGenerateQuotaDegradesToSingleScene(t *testing.T) {
	analyzer := healthyAnalyzer()
	analyzer.scenesErr = errors.New("429 quota exceeded for model")
	g := NewGenerator(analyzer)

	prompt := strings.Repeat("x", 250)
	result := g.Generate(context.Background(), prompt, 8)

	if result.Status != storymodel.GenerationStatusCompleted {
		t.Fatalf("quota failure must degrade, not fail")
	}
	if len(result.Scenes) != 1 {
		t.Fatalf("expected single synthetic scene, got %d", len(result.Scenes))
	}
	scene := result.Scenes[0]
	if scene.SceneNumber != 1 {
		t.Errorf("synthetic scene number = %d", scene.SceneNumber)
	}
	if len([]rune(scene.SceneText)) != 203 || !strings.HasSuffix(scene.SceneText, "...") {
		t.Errorf("synthetic scene text must be first 200 chars plus ellipsis, got %d runes", len([]rune(scene.SceneText)))
	}
	if scene.CinematicPrompt != "Cinematic scene: "+strings.Repeat("x", 150) {
		t.Errorf("synthetic cinematic prompt wrong: %q", scene.CinematicPrompt)
	}
}

func TestGenerateSceneFailureFailsPipeline(t *testing.T) {
	analyzer := healthyAnalyzer()
	analyzer.scenesErr = errors.New("model returned invalid output")
	g := NewGenerator(analyzer)

	result := g.Generate(context.Background(), "Some story.", 8)

	if result.Status != storymodel.GenerationStatusFailed {
		t.Fatalf("expected failed status, got %s", result.Status)
	}
	if len(result.Scenes) != 0 {
		t.Errorf("failed pipeline must not carry scenes")
	}
}

func TestGeneratePatternAndSummaryFailuresDegrade(t *testing.T) {
	analyzer := healthyAnalyzer()
	analyzer.patternsErr = errors.New("patterns down")
	analyzer.summaryErr = errors.New("summary down")
	g := NewGenerator(analyzer)

	result := g.Generate(context.Background(), "Some story.", 8)

	if result.Status != storymodel.GenerationStatusCompleted {
		t.Fatalf("pattern/summary failures must not fail the pipeline")
	}
	if result.Patterns != nil {
		t.Errorf("patterns must be dropped on failure")
	}
	if result.Summary != "Story summary unavailable" {
		t.Errorf("summary placeholder missing: %q", result.Summary)
	}
}
