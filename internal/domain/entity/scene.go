// Package entity 定义领域实体
package entity

import (
	"time"
)

// Scene 场景实体，scene_number 从 1 开始连续递增
type Scene struct {
	ID                string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoryID           string    `json:"story_id" gorm:"type:uuid;not null;uniqueIndex:idx_story_scene"`
	SceneNumber       int       `json:"scene_number" gorm:"not null;uniqueIndex:idx_story_scene"`
	SceneText         string    `json:"scene_text" gorm:"type:text"`
	CinematicPrompt   string    `json:"cinematic_prompt" gorm:"type:text"`
	ImagePath         string    `json:"image_path,omitempty" gorm:"type:varchar(512)"`
	ImageURL          string    `json:"image_url,omitempty" gorm:"type:varchar(512)"`
	ConfidenceScore   float64   `json:"confidence_score" gorm:"default:0"`
	CompletenessScore float64   `json:"completeness_score" gorm:"default:0"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Scene) TableName() string {
	return "scenes"
}

// HasImage 场景是否已有生成的图像
func (s *Scene) HasImage() bool {
	return s.ImagePath != ""
}
