package image

import (
	"bytes"
	"context"
	stdimage "image"
	"image/color"
	"image/png"
	"testing"

	"story-scene-api/internal/workflow/port"
)

// fakeInvoker 按调用次数返回预设结果
type fakeInvoker struct {
	calls int
	fn    func(call int, parts []*port.ImagePart) (*port.ImageResponse, error)
}

func (f *fakeInvoker) GenerateImage(ctx context.Context, parts []*port.ImagePart) (*port.ImageResponse, error) {
	f.calls++
	return f.fn(f.calls, parts)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func nestedResponse(data []byte) *port.ImageResponse {
	return &port.ImageResponse{
		Candidates: []*port.ImageCandidate{
			{
				Content: &port.ImageContent{
					Parts: []*port.ImagePart{
						{Text: "here is your image"},
						{InlineData: &port.ImageBlob{MIMEType: "image/png", Data: data}},
					},
				},
			},
		},
	}
}

func flatResponse(data []byte) *port.ImageResponse {
	return &port.ImageResponse{
		Parts: []*port.ImagePart{
			{InlineData: &port.ImageBlob{MIMEType: "image/png", Data: data}},
		},
	}
}
