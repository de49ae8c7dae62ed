// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/lib/pq"
)

// StoryStatus 故事状态
type StoryStatus string

const (
	StoryStatusGenerating StoryStatus = "generating"
	StoryStatusCompleted  StoryStatus = "completed"
	StoryStatusFailed     StoryStatus = "failed"
)

// Story 故事实体
type Story struct {
	ID            string      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        string      `json:"user_id" gorm:"type:uuid;index;not null"`
	Title         string      `json:"title" gorm:"type:varchar(255)"`
	OriginalTitle string      `json:"original_title,omitempty" gorm:"type:varchar(255)"`
	UserPrompt    string      `json:"user_prompt" gorm:"type:text;not null"`
	Genre         string      `json:"genre" gorm:"type:varchar(64)"`
	Style         string      `json:"style" gorm:"type:varchar(64)"`
	Summary       string      `json:"summary,omitempty" gorm:"type:text"`
	Status        StoryStatus `json:"status" gorm:"type:varchar(32);default:'generating'"`
	Archived      bool        `json:"archived" gorm:"default:false"`
	// 最近一次图像批处理中失败的场景号
	LastBatchFailedScenes pq.Int64Array `json:"last_batch_failed_scenes,omitempty" gorm:"type:integer[]"`
	CreatedAt             time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Story) TableName() string {
	return "stories"
}

// NewStory 创建新故事
func NewStory(userID, userPrompt string) *Story {
	now := time.Now()
	return &Story{
		UserID:     userID,
		UserPrompt: userPrompt,
		Status:     StoryStatusGenerating,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MarkCompleted 标记生成完成
func (s *Story) MarkCompleted() {
	s.Status = StoryStatusCompleted
	s.UpdatedAt = time.Now()
}

// MarkFailed 标记生成失败
func (s *Story) MarkFailed() {
	s.Status = StoryStatusFailed
	s.UpdatedAt = time.Now()
}

// IsOwnedBy 检查故事归属
func (s *Story) IsOwnedBy(userID string) bool {
	return s.UserID == userID
}
