// Package story 实现故事文本流水线
package story

import (
	"context"

	wfmodel "story-scene-api/internal/workflow/model"
)

// Analyzer 文本流水线对生成式文本服务的依赖端口
type Analyzer interface {
	// Classify 对故事进行体裁/风格分类
	Classify(ctx context.Context, text string) (*wfmodel.ClassifyResult, error)

	// GenerateTitle 为故事生成标题
	GenerateTitle(ctx context.Context, text string) (string, error)

	// GenerateScenes 将故事拆分为最多 maxScenes 个场景
	GenerateScenes(ctx context.Context, text string, maxScenes int) ([]wfmodel.ScenePlanItem, error)

	// DetectPatterns 分析场景列表中的重复视觉元素
	DetectPatterns(ctx context.Context, scenes []wfmodel.ScenePlanItem) (*wfmodel.PatternResult, error)

	// Summarize 生成摘要，kind 描述被摘要的文本类型
	Summarize(ctx context.Context, text, kind string) (string, error)
}
