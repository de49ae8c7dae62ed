package story

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"

	storymodel "story-scene-api/internal/application/story/model"
	"story-scene-api/internal/application/story/storyutil"
	wfmodel "story-scene-api/internal/workflow/model"
	"story-scene-api/pkg/errors"
	"story-scene-api/pkg/logger"
	"story-scene-api/pkg/metrics"
)

var tracer = otel.Tracer("application.story")

const (
	defaultGenre = "Drama"
	defaultStyle = "Cinematic"

	summaryPlaceholder = "Story summary unavailable"

	sceneConfidence = 0.8

	maxTitleLen      = 50
	titleFallbackCut = 47
)

// Generator 文本流水线编排器。每一步独立失败并降级，
// 只有场景拆分彻底失败才会把整体状态置为 failed。
type Generator struct {
	analyzer Analyzer
}

// NewGenerator 创建流水线编排器
func NewGenerator(analyzer Analyzer) *Generator {
	return &Generator{analyzer: analyzer}
}

// Generate 执行完整的文本流水线：分类、标题、场景拆分、模式分析、摘要。
// 总是返回非 nil 的结果，调用方根据 Status 判断是否成功。
func (g *Generator) Generate(ctx context.Context, prompt string, maxScenes int) *storymodel.StoryGenerationResult {
	ctx, span := tracer.Start(ctx, "story.Generator.Generate")
	defer span.End()

	start := time.Now()
	result := &storymodel.StoryGenerationResult{
		Genre: defaultGenre,
		Style: defaultStyle,
	}

	// 分类失败不会中断流水线，保留默认体裁/风格
	if classification, err := g.analyzer.Classify(ctx, prompt); err != nil {
		logger.Warn(ctx, "classification failed, using defaults", "error", err.Error())
	} else {
		if strings.TrimSpace(classification.Genre) != "" {
			result.Genre = classification.Genre
		}
		if strings.TrimSpace(classification.Style) != "" {
			result.Style = classification.Style
		}
	}

	result.Title = g.generateTitle(ctx, prompt)
	result.OriginalTitle = result.Title

	scenes, degraded, sceneErr := g.generateScenes(ctx, prompt, maxScenes)
	if sceneErr != nil {
		logger.Error(ctx, "scene breakdown failed", sceneErr)
		result.Status = storymodel.GenerationStatusFailed
		result.Summary = g.summarize(ctx, prompt)
		observeGeneration(result, start)
		return result
	}

	// 模式分析失败只记录，不影响结果
	if !degraded {
		if patterns, err := g.analyzer.DetectPatterns(ctx, scenes); err != nil {
			logger.Warn(ctx, "pattern detection failed", "error", err.Error())
		} else {
			result.Patterns = patterns
		}
	}

	result.Summary = g.summarize(ctx, prompt)

	result.Scenes = make([]storymodel.SceneOutput, 0, len(scenes))
	for _, s := range scenes {
		result.Scenes = append(result.Scenes, storymodel.SceneOutput{
			SceneNumber:       s.SceneNumber,
			SceneText:         s.SceneText,
			CinematicPrompt:   s.CinematicPrompt,
			ConfidenceScore:   sceneConfidence,
			CompletenessScore: completeness(s.SceneText),
		})
	}
	result.Status = storymodel.GenerationStatusCompleted

	observeGeneration(result, start)
	return result
}

// generateTitle 生成标题，失败时回退为输入的前几个词
func (g *Generator) generateTitle(ctx context.Context, prompt string) string {
	title, err := g.analyzer.GenerateTitle(ctx, prompt)
	if err != nil {
		logger.Warn(ctx, "title generation failed, using fallback", "error", err.Error())
		return FallbackTitle(prompt)
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		title = storyutil.TruncateByRunes(title, titleFallbackCut) + "..."
	}
	return title
}

// FallbackTitle 从输入文本构造标题：取前 6 个词，超长截断到 50 字符
func FallbackTitle(prompt string) string {
	words := strings.Fields(prompt)
	n := len(words)
	if n > 6 {
		words = words[:6]
	}
	title := strings.Join(words, " ")
	if n > 6 {
		title += "..."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		title = storyutil.TruncateByRunes(title, titleFallbackCut) + "..."
	}
	return title
}

// generateScenes 执行场景拆分。配额类失败降级为单个合成场景，
// 其它失败返回错误。返回值 degraded 表示是否走了降级路径。
func (g *Generator) generateScenes(ctx context.Context, prompt string, maxScenes int) ([]wfmodel.ScenePlanItem, bool, error) {
	scenes, err := g.analyzer.GenerateScenes(ctx, prompt, maxScenes)
	if err == nil {
		return scenes, false, nil
	}

	if errors.IsRateLimited(err) {
		logger.Warn(ctx, "scene breakdown hit quota, degrading to single scene", "error", err.Error())
		return []wfmodel.ScenePlanItem{syntheticScene(prompt)}, true, nil
	}
	return nil, false, err
}

// syntheticScene 配额降级时由输入文本直接构造的场景
func syntheticScene(prompt string) wfmodel.ScenePlanItem {
	text := prompt
	if utf8.RuneCountInString(prompt) > 200 {
		text = storyutil.TruncateByRunes(prompt, 200) + "..."
	}
	return wfmodel.ScenePlanItem{
		SceneNumber:     1,
		SceneText:       text,
		CinematicPrompt: "Cinematic scene: " + storyutil.TruncateByRunes(prompt, 150),
	}
}

// summarize 生成摘要，失败时使用固定占位文本
func (g *Generator) summarize(ctx context.Context, prompt string) string {
	summary, err := g.analyzer.Summarize(ctx, prompt, "story")
	if err != nil {
		logger.Warn(ctx, "summary generation failed, using placeholder", "error", err.Error())
		return summaryPlaceholder
	}
	return summary
}

// completeness 场景完整度评分：文本长度相对 100 字符的占比，封顶 1.0
func completeness(sceneText string) float64 {
	score := float64(utf8.RuneCountInString(sceneText)) / 100
	if score > 1.0 {
		return 1.0
	}
	return score
}

func observeGeneration(result *storymodel.StoryGenerationResult, start time.Time) {
	status := string(result.Status)
	metrics.StoryGenerationTotal.WithLabelValues(status).Inc()
	metrics.StoryGenerationDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	metrics.StorySceneCount.WithLabelValues(status).Observe(float64(len(result.Scenes)))
}
