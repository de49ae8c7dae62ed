package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	einoobs "story-scene-api/internal/observability/eino"
	wfmodel "story-scene-api/internal/workflow/model"
	workflowport "story-scene-api/internal/workflow/port"
	workflowprompt "story-scene-api/internal/workflow/prompt"
)

// StoryChain 封装故事文本流水线的五个 LLM 调用
type StoryChain struct {
	factory workflowport.ChatModelFactory
}

func NewStoryChain(factory workflowport.ChatModelFactory) *StoryChain {
	return &StoryChain{factory: factory}
}

var storyPromptRegistry = workflowprompt.NewRegistry()

// Classify 对故事进行体裁/风格分类
func (c *StoryChain) Classify(ctx context.Context, in *wfmodel.StoryChainInput) (*schema.Message, error) {
	return c.invoke(ctx, in, workflowprompt.PromptClassifyV1, map[string]any{
		"story": strings.TrimSpace(in.Story),
	})
}

// Title 为故事生成标题
func (c *StoryChain) Title(ctx context.Context, in *wfmodel.StoryChainInput) (*schema.Message, error) {
	return c.invoke(ctx, in, workflowprompt.PromptTitleV1, map[string]any{
		"story": strings.TrimSpace(in.Story),
	})
}

// Scenes 将故事拆分为场景列表
func (c *StoryChain) Scenes(ctx context.Context, in *wfmodel.StoryChainInput, maxScenes int) (*schema.Message, error) {
	return c.invoke(ctx, in, workflowprompt.PromptSceneBreakV1, map[string]any{
		"story":      strings.TrimSpace(in.Story),
		"max_scenes": maxScenes,
	})
}

// Patterns 对场景列表做视觉模式分析
func (c *StoryChain) Patterns(ctx context.Context, in *wfmodel.StoryChainInput, scenesJSON string) (*schema.Message, error) {
	return c.invoke(ctx, in, workflowprompt.PromptPatternDetectV1, map[string]any{
		"scenes": scenesJSON,
	})
}

// Summary 生成摘要，kind 描述被摘要的文本类型
func (c *StoryChain) Summary(ctx context.Context, in *wfmodel.StoryChainInput, kind string) (*schema.Message, error) {
	return c.invoke(ctx, in, workflowprompt.PromptSummaryV1, map[string]any{
		"story": strings.TrimSpace(in.Story),
		"kind":  kind,
	})
}

func (c *StoryChain) invoke(ctx context.Context, in *wfmodel.StoryChainInput, id workflowprompt.PromptID, vars map[string]any) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Story) == "" {
		return nil, fmt.Errorf("story is required")
	}

	ctx = einoobs.WithStepProvider(ctx, string(id), in.Provider)

	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	tpl, err := storyPromptRegistry.ChatTemplate(id)
	if err != nil {
		return nil, err
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildStoryModelOptions(in)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

func buildStoryModelOptions(in *wfmodel.StoryChainInput) []model.Option {
	opts := make([]model.Option, 0, 3)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	return opts
}
