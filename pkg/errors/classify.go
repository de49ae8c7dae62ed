package errors

import (
	"context"
	"errors"
	"strings"
)

// 上游供应商的限流错误没有稳定的类型，只能依赖错误文本中的关键字。
var rateLimitKeywords = []string{
	"429",
	"rate limit",
	"quota",
	"throttled",
	"resource exhausted",
}

// IsRateLimited 判断错误是否属于限流/配额类
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == CodeRateLimited {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, kw := range rateLimitKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// ClassifyGeneration 将上游生成调用返回的任意错误归类为生成错误码。
// 已经是 AppError 的错误原样返回，不做二次包装。
func ClassifyGeneration(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if IsRateLimited(err) {
		return Wrap(err, CodeRateLimited, "upstream rate limited")
	}

	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"):
		return Wrap(err, CodeTimeout, "generation timed out")
	case strings.Contains(msg, "no image"):
		return Wrap(err, CodeNoImageReturned, "no image returned")
	default:
		return Wrap(err, CodeGenerationFailed, "generation failed")
	}
}
