package image

import (
	"fmt"

	"story-scene-api/internal/workflow/port"
)

// continuityInstruction 连续性指令，逐字固定
const continuityInstruction = "Maintain strict visual continuity with the provided image. " +
	"Characters, faces, clothing, lighting, and environment must remain consistent."

// PreviousImage 上一个成功场景的图像，作为连续性条件传入下一次调用
type PreviousImage struct {
	Data     []byte
	MIMEType string
}

// BuildParts 构造一次图像生成调用的内容片段。
// 有前序图像时顺序固定为：[图像, 连续性指令, 文本提示]；
// 纵横比提示前缀在最后一个文本片段上。
func BuildParts(stylePrompt, scenePrompt, aspectRatio string, prev *PreviousImage) []*port.ImagePart {
	parts := make([]*port.ImagePart, 0, 3)

	if prev != nil {
		parts = append(parts, &port.ImagePart{
			InlineData: &port.ImageBlob{
				MIMEType: prev.MIMEType,
				Data:     prev.Data,
			},
		})
		parts = append(parts, &port.ImagePart{Text: continuityInstruction})
	}

	text := stylePrompt + "\n" + scenePrompt
	if aspectRatio != "" {
		text = fmt.Sprintf("Create this image with %s aspect ratio. ", aspectRatio) + text
	}
	parts = append(parts, &port.ImagePart{Text: text})

	return parts
}
