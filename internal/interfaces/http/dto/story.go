// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	storymodel "story-scene-api/internal/application/story/model"
	"story-scene-api/internal/domain/entity"
)

// GenerateScenesRequest 场景生成请求
type GenerateScenesRequest struct {
	Prompt    string `json:"prompt" binding:"required"`
	Style     string `json:"style" binding:"omitempty,max=64"`
	MaxScenes int    `json:"max_scenes" binding:"omitempty,min=1"`
}

// SceneOutput 场景输出
type SceneOutput struct {
	SceneNumber       int     `json:"scene_number"`
	SceneText         string  `json:"scene_text"`
	CinematicPrompt   string  `json:"cinematic_prompt"`
	ImagePath         string  `json:"image_path,omitempty"`
	ImageURL          string  `json:"image_url,omitempty"`
	ConfidenceScore   float64 `json:"confidence_score"`
	CompletenessScore float64 `json:"completeness_score"`
}

// StoryResponse 故事响应
type StoryResponse struct {
	StoryID       string        `json:"story_id"`
	Title         string        `json:"title"`
	Genre         string        `json:"genre"`
	Style         string        `json:"style"`
	Scenes        []SceneOutput `json:"scenes"`
	Summary       string        `json:"summary"`
	UserPrompt    string        `json:"user_prompt,omitempty"`
	TotalScenes   int           `json:"total_scenes"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	OriginalTitle string        `json:"original_title"`
	Archived      bool          `json:"archived"`
}

// StoryListItem 故事列表项
type StoryListItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Genre     string    `json:"genre"`
	Style     string    `json:"style"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateStoryRequest 更新故事请求
type UpdateStoryRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

// SearchQuery 搜索请求
type SearchQuery struct {
	Query string `json:"query" binding:"required"`
}

// FilterQuery 筛选请求
type FilterQuery struct {
	Genre string `json:"genre"`
	Style string `json:"style"`
}

// CategorizeRequest 分类请求
type CategorizeRequest struct {
	StoryText string `json:"story_text" binding:"required"`
}

// ClassificationResponse 分类响应
type ClassificationResponse struct {
	Genre      string  `json:"genre"`
	Style      string  `json:"style"`
	Confidence float64 `json:"confidence"`
}

// ToSceneOutput 将生成结果中的场景转换为 DTO
func ToSceneOutput(s storymodel.SceneOutput) SceneOutput {
	return SceneOutput{
		SceneNumber:       s.SceneNumber,
		SceneText:         s.SceneText,
		CinematicPrompt:   s.CinematicPrompt,
		ConfidenceScore:   s.ConfidenceScore,
		CompletenessScore: s.CompletenessScore,
	}
}

// ToSceneOutputFromEntity 将场景实体转换为 DTO
func ToSceneOutputFromEntity(s *entity.Scene) SceneOutput {
	return SceneOutput{
		SceneNumber:       s.SceneNumber,
		SceneText:         s.SceneText,
		CinematicPrompt:   s.CinematicPrompt,
		ImagePath:         s.ImagePath,
		ImageURL:          s.ImageURL,
		ConfidenceScore:   s.ConfidenceScore,
		CompletenessScore: s.CompletenessScore,
	}
}

// ToStoryResponse 将故事实体及其场景转换为响应
func ToStoryResponse(story *entity.Story, scenes []*entity.Scene, summary string) *StoryResponse {
	sceneOutputs := make([]SceneOutput, 0, len(scenes))
	for _, s := range scenes {
		sceneOutputs = append(sceneOutputs, ToSceneOutputFromEntity(s))
	}

	originalTitle := story.OriginalTitle
	if originalTitle == "" {
		originalTitle = story.Title
	}

	return &StoryResponse{
		StoryID:       story.ID,
		Title:         story.Title,
		Genre:         story.Genre,
		Style:         story.Style,
		Scenes:        sceneOutputs,
		Summary:       summary,
		UserPrompt:    story.UserPrompt,
		TotalScenes:   len(sceneOutputs),
		Status:        string(story.Status),
		CreatedAt:     story.CreatedAt,
		OriginalTitle: originalTitle,
		Archived:      story.Archived,
	}
}

// ToStoryListItem 将故事实体转换为列表项
func ToStoryListItem(story *entity.Story) StoryListItem {
	return StoryListItem{
		ID:        story.ID,
		Title:     story.Title,
		Genre:     story.Genre,
		Style:     story.Style,
		Status:    string(story.Status),
		CreatedAt: story.CreatedAt,
	}
}

// ToStoryListItems 批量转换
func ToStoryListItems(stories []*entity.Story) []StoryListItem {
	items := make([]StoryListItem, 0, len(stories))
	for _, s := range stories {
		items = append(items, ToStoryListItem(s))
	}
	return items
}
