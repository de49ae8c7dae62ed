package image

import (
	"context"
	"errors"
	"testing"
	"time"

	"story-scene-api/internal/workflow/port"
	apperrors "story-scene-api/pkg/errors"
)

func TestBoundedInvokerSuccess(t *testing.T) {
	data := pngBytes(t)
	fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
		return nestedResponse(data), nil
	}}
	inv := NewBoundedInvoker(fake, time.Second)

	resp, err := inv.GenerateImage(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Candidates) != 1 {
		t.Errorf("response not passed through")
	}
}

func TestBoundedInvokerTimeoutAbandonsCall(t *testing.T) {
	started := make(chan struct{})
	fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
		close(started)
		time.Sleep(300 * time.Millisecond)
		return flatResponse(nil), nil
	}}
	inv := NewBoundedInvoker(fake, 20*time.Millisecond)

	begin := time.Now()
	_, err := inv.GenerateImage(context.Background(), nil)
	elapsed := time.Since(begin)

	<-started
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeTimeout {
		t.Fatalf("expected CodeTimeout, got %s", appErr.Code)
	}
	if elapsed >= 300*time.Millisecond {
		t.Errorf("caller waited for the abandoned call to finish: %v", elapsed)
	}
}

func TestBoundedInvokerClassifiesUpstreamErrors(t *testing.T) {
	cases := []struct {
		upstream string
		want     apperrors.ErrorCode
	}{
		{"429 too many requests", apperrors.CodeRateLimited},
		{"RESOURCE EXHAUSTED: quota exceeded", apperrors.CodeRateLimited},
		{"request throttled by upstream", apperrors.CodeRateLimited},
		{"connection reset by peer", apperrors.CodeGenerationFailed},
	}

	for _, tc := range cases {
		fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
			return nil, errors.New(tc.upstream)
		}}
		inv := NewBoundedInvoker(fake, time.Second)

		_, err := inv.GenerateImage(context.Background(), nil)
		appErr := apperrors.AsAppError(err)
		if appErr.Code != tc.want {
			t.Errorf("upstream %q classified as %s, want %s", tc.upstream, appErr.Code, tc.want)
		}
	}
}

func TestBoundedInvokerRecoversPanic(t *testing.T) {
	fake := &fakeInvoker{fn: func(call int, parts []*port.ImagePart) (*port.ImageResponse, error) {
		panic("upstream SDK exploded")
	}}
	inv := NewBoundedInvoker(fake, time.Second)

	_, err := inv.GenerateImage(context.Background(), nil)
	if err == nil {
		t.Fatalf("expected error from panicking call")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeGenerationFailed {
		t.Errorf("expected CodeGenerationFailed, got %s", appErr.Code)
	}
}
