// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"story-scene-api/internal/domain/entity"
)

// StoryFilter 故事筛选条件
type StoryFilter struct {
	Genre string
	Style string
}

// StoryRepository 故事仓储接口
type StoryRepository interface {
	// Create 创建故事
	Create(ctx context.Context, story *entity.Story) error

	// GetByID 根据 ID 获取故事
	GetByID(ctx context.Context, id string) (*entity.Story, error)

	// GetByIDForUser 根据 ID 获取属于指定用户的故事
	GetByIDForUser(ctx context.Context, id, userID string) (*entity.Story, error)

	// Update 更新故事
	Update(ctx context.Context, story *entity.Story) error

	// UpdateStatus 更新故事状态
	UpdateStatus(ctx context.Context, id string, status entity.StoryStatus) error

	// UpdateTitle 更新故事标题
	UpdateTitle(ctx context.Context, id, userID, title string) error

	// SetArchived 归档/取消归档
	SetArchived(ctx context.Context, id, userID string, archived bool) error

	// UpdateBatchOutcome 记录最近一次图像批处理失败的场景号
	UpdateBatchOutcome(ctx context.Context, id string, failedScenes []int64) error

	// Delete 删除故事及其场景
	Delete(ctx context.Context, id, userID string) error

	// ListByUser 获取用户故事列表
	ListByUser(ctx context.Context, userID string, archived bool, pagination Pagination) (*PagedResult[*entity.Story], error)

	// Search 按关键字搜索用户故事
	Search(ctx context.Context, userID, keyword string, pagination Pagination) (*PagedResult[*entity.Story], error)

	// Filter 按体裁/风格筛选用户故事
	Filter(ctx context.Context, userID string, filter StoryFilter, pagination Pagination) (*PagedResult[*entity.Story], error)

	// CountByGenre 按体裁统计用户故事数
	CountByGenre(ctx context.Context, userID string) (map[string]int64, error)
}
