// Package image 实现场景图像生成：风格解析、连续性条件、
// 超时调用、响应归一化、单场景引擎和批处理协调。
package image

import "strings"

// 风格标签到描述片段的固定映射，匹配时忽略大小写
var stylePrompts = map[string]string{
	"cinematic":  "Cinematic film photography, dramatic lighting, professional cinematography.",
	"anime":      "Anime art style, vibrant colors, Japanese animation aesthetic.",
	"watercolor": "Watercolor painting, soft brush strokes.",
	"noir":       "Film noir, high contrast black and white, dramatic shadows.",
	"cyberpunk":  "Cyberpunk aesthetic, neon lights, futuristic city.",
}

// ResolveStyle 将风格标签解析为风格提示。
// 未知标签原样保留在输出中，不报错。
func ResolveStyle(label string) string {
	if fragment, ok := stylePrompts[strings.ToLower(label)]; ok {
		return "Style: " + fragment
	}
	return "Style: " + label
}
