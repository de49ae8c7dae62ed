// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"story-scene-api/internal/domain/entity"
)

// SceneRepository 场景仓储接口
type SceneRepository interface {
	// CreateBatch 批量创建场景
	CreateBatch(ctx context.Context, scenes []*entity.Scene) error

	// ListByStory 按场景号升序获取故事的全部场景
	ListByStory(ctx context.Context, storyID string) ([]*entity.Scene, error)

	// GetByNumber 获取指定场景
	GetByNumber(ctx context.Context, storyID string, sceneNumber int) (*entity.Scene, error)

	// UpdateImage 更新场景的图像路径和 URL
	UpdateImage(ctx context.Context, storyID string, sceneNumber int, imagePath, imageURL string) error

	// DeleteByStory 删除故事的全部场景
	DeleteByStory(ctx context.Context, storyID string) error
}
