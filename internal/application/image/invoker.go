package image

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"story-scene-api/internal/workflow/port"
	"story-scene-api/pkg/errors"
)

// DefaultInvokeTimeout 单次图像生成调用的默认上限
const DefaultInvokeTimeout = 120 * time.Second

// BoundedInvoker 用超时边界包装上游调用。超时后放弃等待，
// 后台 goroutine 自行结束，其迟到的结果被丢弃。
type BoundedInvoker struct {
	next    port.ImageInvoker
	timeout time.Duration
}

// NewBoundedInvoker 创建带超时边界的调用器
func NewBoundedInvoker(next port.ImageInvoker, timeout time.Duration) *BoundedInvoker {
	if timeout <= 0 {
		timeout = DefaultInvokeTimeout
	}
	return &BoundedInvoker{next: next, timeout: timeout}
}

type invokeResult struct {
	resp *port.ImageResponse
	err  error
}

// GenerateImage 在独立 goroutine 中执行上游调用并等待结果或超时
func (b *BoundedInvoker) GenerateImage(ctx context.Context, parts []*port.ImagePart) (*port.ImageResponse, error) {
	// 缓冲为 1，超时放弃后 goroutine 仍可写入并退出
	resultCh := make(chan invokeResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- invokeResult{err: fmt.Errorf("image invocation panicked: %v\n%s", r, debug.Stack())}
			}
		}()
		resp, err := b.next.GenerateImage(ctx, parts)
		resultCh <- invokeResult{resp: resp, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return nil, errors.ClassifyGeneration(res.err)
		}
		return res.resp, nil
	case <-time.After(b.timeout):
		return nil, errors.New(errors.CodeTimeout, "image generation timeout")
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.CodeTimeout, "image generation canceled")
	}
}
