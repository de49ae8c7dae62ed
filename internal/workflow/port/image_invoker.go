package port

import (
	"context"
)

// ImageBlob 内联图像数据
type ImageBlob struct {
	MIMEType string
	Data     []byte
}

// ImagePart 响应/请求中的单个内容片段，文本和内联数据互斥
type ImagePart struct {
	Text       string
	InlineData *ImageBlob
}

// ImageContent 候选内容
type ImageContent struct {
	Parts []*ImagePart
}

// ImageCandidate 响应候选
type ImageCandidate struct {
	Content *ImageContent
}

// ImageResponse 图像生成响应。上游供应商可能返回嵌套的
// candidates 结构，也可能直接返回扁平的 parts 列表。
type ImageResponse struct {
	Candidates []*ImageCandidate
	Parts      []*ImagePart
}

// ImageInvoker 定义对上游图像生成服务的最小依赖（port）。
type ImageInvoker interface {
	GenerateImage(ctx context.Context, parts []*ImagePart) (*ImageResponse, error)
}
