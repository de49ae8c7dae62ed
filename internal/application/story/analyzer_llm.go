package story

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	workflowchain "story-scene-api/internal/workflow/chain"
	wfmodel "story-scene-api/internal/workflow/model"
	"story-scene-api/internal/workflow/node"
	workflowport "story-scene-api/internal/workflow/port"
)

// LLMAnalyzer 基于 Eino ChatModel 的 Analyzer 实现
type LLMAnalyzer struct {
	chain *workflowchain.StoryChain
}

// NewLLMAnalyzer 创建 LLM 分析器
func NewLLMAnalyzer(factory workflowport.ChatModelFactory) *LLMAnalyzer {
	return &LLMAnalyzer{
		chain: workflowchain.NewStoryChain(factory),
	}
}

// Classify 对故事进行体裁/风格分类
func (a *LLMAnalyzer) Classify(ctx context.Context, text string) (*wfmodel.ClassifyResult, error) {
	outMsg, err := a.chain.Classify(ctx, &wfmodel.StoryChainInput{Story: text})
	if err != nil {
		return nil, err
	}
	return ParseClassifyResult(outMsg.Content)
}

// GenerateTitle 为故事生成标题
func (a *LLMAnalyzer) GenerateTitle(ctx context.Context, text string) (string, error) {
	outMsg, err := a.chain.Title(ctx, &wfmodel.StoryChainInput{Story: text})
	if err != nil {
		return "", err
	}
	title := strings.TrimSpace(strings.Trim(strings.TrimSpace(outMsg.Content), `"`))
	if title == "" {
		return "", fmt.Errorf("empty title output")
	}
	return title, nil
}

// GenerateScenes 将故事拆分为最多 maxScenes 个场景
func (a *LLMAnalyzer) GenerateScenes(ctx context.Context, text string, maxScenes int) ([]wfmodel.ScenePlanItem, error) {
	outMsg, err := a.chain.Scenes(ctx, &wfmodel.StoryChainInput{Story: text}, maxScenes)
	if err != nil {
		return nil, err
	}
	return ParseScenePlan(outMsg.Content, maxScenes)
}

// DetectPatterns 分析场景列表中的重复视觉元素
func (a *LLMAnalyzer) DetectPatterns(ctx context.Context, scenes []wfmodel.ScenePlanItem) (*wfmodel.PatternResult, error) {
	scenesJSON, err := json.Marshal(scenes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scenes: %w", err)
	}

	// Patterns 链路的 story 字段仅用于非空校验
	outMsg, err := a.chain.Patterns(ctx, &wfmodel.StoryChainInput{Story: string(scenesJSON)}, string(scenesJSON))
	if err != nil {
		return nil, err
	}

	var result wfmodel.PatternResult
	if err := json.Unmarshal([]byte(node.ExtractJSONObject(outMsg.Content)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse pattern result: %w", err)
	}
	return &result, nil
}

// Summarize 生成摘要
func (a *LLMAnalyzer) Summarize(ctx context.Context, text, kind string) (string, error) {
	outMsg, err := a.chain.Summary(ctx, &wfmodel.StoryChainInput{Story: text}, kind)
	if err != nil {
		return "", err
	}
	summary := strings.TrimSpace(outMsg.Content)
	if summary == "" {
		return "", fmt.Errorf("empty summary output")
	}
	return summary, nil
}
