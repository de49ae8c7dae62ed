package image

import (
	"bytes"
	"encoding/base64"

	"story-scene-api/internal/workflow/port"
	"story-scene-api/pkg/errors"
)

// 已知图像格式的签名
var imageSignatures = [][]byte{
	{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
	{0xFF, 0xD8, 0xFF},
	[]byte("GIF8"),
}

// ExtractImage 从响应中提取第一段图像字节。
// 先探测嵌套的 candidates 结构，再探测扁平的 parts 结构。
// 内联数据不是已知图像签名时，按 base64 文本解码后复查。
func ExtractImage(resp *port.ImageResponse) ([]byte, error) {
	if resp == nil {
		return nil, errors.New(errors.CodeMalformedResponse, "image response is nil")
	}

	parts := candidateParts(resp)
	if parts == nil {
		parts = resp.Parts
	}
	if parts == nil {
		return nil, errors.New(errors.CodeMalformedResponse, "image response has no content parts")
	}

	for _, part := range parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		if data, ok := normalizePayload(part.InlineData.Data); ok {
			return data, nil
		}
	}

	return nil, errors.New(errors.CodeNoImageReturned, "no image returned in response parts")
}

// candidateParts 返回第一个候选的内容片段，结构缺失时返回 nil
func candidateParts(resp *port.ImageResponse) []*port.ImagePart {
	if len(resp.Candidates) == 0 {
		return nil
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return nil
	}
	return cand.Content.Parts
}

// normalizePayload 校验图像签名，必要时做 base64 回退解码
func normalizePayload(data []byte) ([]byte, bool) {
	if isImageData(data) {
		return data, true
	}

	decoded, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(data)))
	if err != nil {
		return nil, false
	}
	if isImageData(decoded) {
		return decoded, true
	}
	return nil, false
}

func isImageData(data []byte) bool {
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}
