package image

import (
	"context"
	"fmt"
	"sort"

	"story-scene-api/pkg/errors"
	"story-scene-api/pkg/logger"
	"story-scene-api/pkg/metrics"
)

// BatchImageResult 批处理结果
type BatchImageResult struct {
	Generated    []GeneratedImage
	FailedScenes []int
	RateLimited  bool
	Completed    int
	Total        int
}

// Partial 是否只完成了部分场景
func (r *BatchImageResult) Partial() bool {
	return r.Completed < r.Total
}

// Coordinator 批量图像协调器。按场景号严格升序处理：
// 限流中止并保留已生成的部分，其它失败跳过该场景继续，
// 连续性参考始终是最近一次成功的图像。
type Coordinator struct {
	engine *Engine
}

// NewCoordinator 创建批量协调器
func NewCoordinator(engine *Engine) *Coordinator {
	return &Coordinator{engine: engine}
}

// Run 为全部场景生成图像。onGenerated 在每个场景成功后立即调用，
// 用于逐场景落库，后续场景失败不会丢掉已提交的结果。可以为 nil。
func (c *Coordinator) Run(ctx context.Context, storyID, style string, scenes []ScenePlan, onGenerated func(context.Context, GeneratedImage)) *BatchImageResult {
	ordered := make([]ScenePlan, len(scenes))
	copy(ordered, scenes)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SceneNumber < ordered[j].SceneNumber
	})

	result := &BatchImageResult{Total: len(ordered)}
	var prev *PreviousImage

	for _, scene := range ordered {
		generated, next, err := c.engine.Generate(ctx, storyID, style, scene, prev)
		if err != nil {
			appErr := errors.AsAppError(err)
			if appErr.Code == errors.CodeRateLimited {
				logger.Warn(ctx, "image batch aborted by rate limit",
					"story_id", storyID,
					"scene_number", scene.SceneNumber,
					"completed", result.Completed,
				)
				result.RateLimited = true
				break
			}

			logger.Error(ctx, fmt.Sprintf("scene %d image failed, continuing", scene.SceneNumber), appErr,
				"story_id", storyID,
			)
			result.FailedScenes = append(result.FailedScenes, scene.SceneNumber)
			continue
		}

		result.Generated = append(result.Generated, *generated)
		result.Completed++
		prev = next

		if onGenerated != nil {
			onGenerated(ctx, *generated)
		}
	}

	rateLimited := "false"
	if result.RateLimited {
		rateLimited = "true"
	}
	if result.Total > 0 {
		metrics.ImageBatchCompleted.WithLabelValues(rateLimited).
			Observe(float64(result.Completed) / float64(result.Total))
	}

	return result
}
