// Package dto 提供 HTTP 层数据传输对象
package dto

// BatchImageResponse 批量图像生成响应。
// 三种结果形态共用一个结构：
//   - 全部成功：message/image_paths/image_urls/partial=false
//   - 部分失败：partial=true + failed_scenes
//   - 触发限流：partial=true + rate_limited=true + completed/total
type BatchImageResponse struct {
	Message      string   `json:"message"`
	ImagePaths   []string `json:"image_paths"`
	ImageURLs    []string `json:"image_urls"`
	Partial      bool     `json:"partial"`
	RateLimited  bool     `json:"rate_limited,omitempty"`
	Completed    *int     `json:"completed,omitempty"`
	Total        *int     `json:"total,omitempty"`
	FailedScenes []int    `json:"failed_scenes,omitempty"`
}
