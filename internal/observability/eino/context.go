package eino

import (
	"context"
	"strings"
)

type obsCtxKey string

const (
	obsCtxKeyStep     obsCtxKey = "llm_step"
	obsCtxKeyProvider obsCtxKey = "llm_provider"
)

// WithStepProvider 在 Context 中标记当前流水线步骤和 LLM 提供方，
// 供全局回调在指标和追踪里打标签。
func WithStepProvider(ctx context.Context, step, provider string) context.Context {
	if ctx == nil {
		return nil
	}
	if s := strings.TrimSpace(step); s != "" {
		ctx = context.WithValue(ctx, obsCtxKeyStep, s)
	}
	if p := strings.TrimSpace(provider); p != "" {
		ctx = context.WithValue(ctx, obsCtxKeyProvider, p)
	}
	return ctx
}

// StepFromContext 读取流水线步骤标记
func StepFromContext(ctx context.Context) string {
	return ctxString(ctx, obsCtxKeyStep, "unknown")
}

// ProviderFromContext 读取 LLM 提供方标记，空值表示默认提供方
func ProviderFromContext(ctx context.Context) string {
	return ctxString(ctx, obsCtxKeyProvider, "default")
}

func ctxString(ctx context.Context, key obsCtxKey, fallback string) string {
	if ctx == nil {
		return fallback
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}
