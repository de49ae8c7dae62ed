// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"story-scene-api/internal/domain/entity"
)

// SceneRepository 场景仓储实现
type SceneRepository struct {
	client *Client
}

// NewSceneRepository 创建场景仓储
func NewSceneRepository(client *Client) *SceneRepository {
	return &SceneRepository{client: client}
}

// CreateBatch 批量创建场景
func (r *SceneRepository) CreateBatch(ctx context.Context, scenes []*entity.Scene) error {
	ctx, span := tracer.Start(ctx, "postgres.SceneRepository.CreateBatch")
	defer span.End()

	if len(scenes) == 0 {
		return nil
	}

	db := getDB(ctx, r.client.db)
	if err := db.Create(scenes).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create scenes: %w", err)
	}
	return nil
}

// ListByStory 按场景号升序获取故事的全部场景
func (r *SceneRepository) ListByStory(ctx context.Context, storyID string) ([]*entity.Scene, error) {
	ctx, span := tracer.Start(ctx, "postgres.SceneRepository.ListByStory")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var scenes []*entity.Scene
	if err := db.Where("story_id = ?", storyID).
		Order("scene_number ASC").
		Find(&scenes).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}
	return scenes, nil
}

// GetByNumber 获取指定场景
func (r *SceneRepository) GetByNumber(ctx context.Context, storyID string, sceneNumber int) (*entity.Scene, error) {
	ctx, span := tracer.Start(ctx, "postgres.SceneRepository.GetByNumber")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var scene entity.Scene
	if err := db.First(&scene, "story_id = ? AND scene_number = ?", storyID, sceneNumber).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get scene: %w", err)
	}
	return &scene, nil
}

// UpdateImage 更新场景的图像路径和 URL
func (r *SceneRepository) UpdateImage(ctx context.Context, storyID string, sceneNumber int, imagePath, imageURL string) error {
	ctx, span := tracer.Start(ctx, "postgres.SceneRepository.UpdateImage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Scene{}).
		Where("story_id = ? AND scene_number = ?", storyID, sceneNumber).
		Updates(map[string]interface{}{
			"image_path": imagePath,
			"image_url":  imageURL,
		}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update scene image: %w", err)
	}
	return nil
}

// DeleteByStory 删除故事的全部场景
func (r *SceneRepository) DeleteByStory(ctx context.Context, storyID string) error {
	ctx, span := tracer.Start(ctx, "postgres.SceneRepository.DeleteByStory")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Scene{}, "story_id = ?", storyID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete scenes: %w", err)
	}
	return nil
}
