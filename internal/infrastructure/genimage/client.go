// Package genimage 提供基于 Gemini API 的图像生成客户端
package genimage

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"

	"story-scene-api/internal/config"
	"story-scene-api/internal/workflow/port"
)

var tracer = otel.Tracer("genimage")

// Client 图像生成客户端，实现 port.ImageInvoker
type Client struct {
	client *genai.Client
	model  string
}

// NewClient 创建图像生成客户端
func NewClient(ctx context.Context, cfg *config.ImageConfig) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		client: c,
		model:  cfg.Model,
	}, nil
}

// GenerateImage 调用上游生成图像并转换为中立的响应结构
func (c *Client) GenerateImage(ctx context.Context, parts []*port.ImagePart) (*port.ImageResponse, error) {
	ctx, span := tracer.Start(ctx, "genimage.GenerateImage")
	span.SetAttributes(
		attribute.String("genimage.model", c.model),
		attribute.Int("genimage.part_count", len(parts)),
	)
	defer span.End()

	genParts := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.InlineData != nil {
			genParts = append(genParts, genai.NewPartFromBytes(p.InlineData.Data, p.InlineData.MIMEType))
			continue
		}
		genParts = append(genParts, genai.NewPartFromText(p.Text))
	}

	contents := []*genai.Content{genai.NewContentFromParts(genParts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("generate content failed: %w", err)
	}

	return convertResponse(resp), nil
}

// convertResponse 将 SDK 响应转换为中立结构，保留嵌套层级
func convertResponse(resp *genai.GenerateContentResponse) *port.ImageResponse {
	out := &port.ImageResponse{}
	if resp == nil {
		return out
	}

	for _, cand := range resp.Candidates {
		pc := &port.ImageCandidate{}
		if cand.Content != nil {
			pc.Content = &port.ImageContent{Parts: convertParts(cand.Content.Parts)}
		}
		out.Candidates = append(out.Candidates, pc)
	}
	return out
}

func convertParts(parts []*genai.Part) []*port.ImagePart {
	converted := make([]*port.ImagePart, 0, len(parts))
	for _, p := range parts {
		if p == nil {
			continue
		}
		cp := &port.ImagePart{Text: p.Text}
		if p.InlineData != nil {
			cp.InlineData = &port.ImageBlob{
				MIMEType: p.InlineData.MIMEType,
				Data:     p.InlineData.Data,
			}
		}
		converted = append(converted, cp)
	}
	return converted
}
