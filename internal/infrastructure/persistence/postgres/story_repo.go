// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"story-scene-api/internal/domain/entity"
	"story-scene-api/internal/domain/repository"
)

// StoryRepository 故事仓储实现
type StoryRepository struct {
	client *Client
}

// NewStoryRepository 创建故事仓储
func NewStoryRepository(client *Client) *StoryRepository {
	return &StoryRepository{client: client}
}

// Create 创建故事
func (r *StoryRepository) Create(ctx context.Context, story *entity.Story) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(story).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取故事
func (r *StoryRepository) GetByID(ctx context.Context, id string) (*entity.Story, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var story entity.Story
	if err := db.First(&story, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return &story, nil
}

// GetByIDForUser 根据 ID 获取属于指定用户的故事
func (r *StoryRepository) GetByIDForUser(ctx context.Context, id, userID string) (*entity.Story, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.GetByIDForUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var story entity.Story
	if err := db.First(&story, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get story for user: %w", err)
	}
	return &story, nil
}

// Update 更新故事
func (r *StoryRepository) Update(ctx context.Context, story *entity.Story) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(story).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update story: %w", err)
	}
	return nil
}

// UpdateStatus 更新故事状态
func (r *StoryRepository) UpdateStatus(ctx context.Context, id string, status entity.StoryStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.UpdateStatus")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Story{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update story status: %w", err)
	}
	return nil
}

// UpdateTitle 更新故事标题
func (r *StoryRepository) UpdateTitle(ctx context.Context, id, userID, title string) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.UpdateTitle")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Story{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("title", title)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update story title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetArchived 归档/取消归档
func (r *StoryRepository) SetArchived(ctx context.Context, id, userID string, archived bool) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.SetArchived")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Story{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("archived", archived)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to set story archived: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateBatchOutcome 记录最近一次图像批处理失败的场景号
func (r *StoryRepository) UpdateBatchOutcome(ctx context.Context, id string, failedScenes []int64) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.UpdateBatchOutcome")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Story{}).Where("id = ?", id).
		Update("last_batch_failed_scenes", pq.Int64Array(failedScenes)).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update batch outcome: %w", err)
	}
	return nil
}

// Delete 删除故事及其场景
func (r *StoryRepository) Delete(ctx context.Context, id, userID string) error {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&entity.Story{}, "id = ? AND user_id = ?", id, userID)
		if result.Error != nil {
			span.RecordError(result.Error)
			return fmt.Errorf("failed to delete story: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Delete(&entity.Scene{}, "story_id = ?", id).Error; err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to delete story scenes: %w", err)
		}
		return nil
	})
}

// ListByUser 获取用户故事列表
func (r *StoryRepository) ListByUser(ctx context.Context, userID string, archived bool, pagination repository.Pagination) (*repository.PagedResult[*entity.Story], error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Story{}).Where("user_id = ? AND archived = ?", userID, archived)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count stories: %w", err)
	}

	var stories []*entity.Story
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&stories).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	return repository.NewPagedResult(stories, total, pagination), nil
}

// Search 按关键字搜索用户故事，匹配标题或原始输入
func (r *StoryRepository) Search(ctx context.Context, userID, keyword string, pagination repository.Pagination) (*repository.PagedResult[*entity.Story], error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Search")
	defer span.End()

	db := getDB(ctx, r.client.db)
	pattern := "%" + keyword + "%"
	query := db.Model(&entity.Story{}).
		Where("user_id = ? AND archived = false", userID).
		Where("title ILIKE ? OR user_prompt ILIKE ?", pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count search results: %w", err)
	}

	var stories []*entity.Story
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&stories).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search stories: %w", err)
	}

	return repository.NewPagedResult(stories, total, pagination), nil
}

// Filter 按体裁/风格筛选用户故事
func (r *StoryRepository) Filter(ctx context.Context, userID string, filter repository.StoryFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Story], error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.Filter")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Story{}).Where("user_id = ? AND archived = false", userID)
	if filter.Genre != "" {
		query = query.Where("genre = ?", filter.Genre)
	}
	if filter.Style != "" {
		query = query.Where("style = ?", filter.Style)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count filtered stories: %w", err)
	}

	var stories []*entity.Story
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&stories).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to filter stories: %w", err)
	}

	return repository.NewPagedResult(stories, total, pagination), nil
}

// CountByGenre 按体裁统计用户故事数
func (r *StoryRepository) CountByGenre(ctx context.Context, userID string) (map[string]int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.StoryRepository.CountByGenre")
	defer span.End()

	db := getDB(ctx, r.client.db)
	type row struct {
		Genre string
		Count int64
	}
	var rows []row
	if err := db.Model(&entity.Story{}).
		Select("genre, count(*) as count").
		Where("user_id = ? AND archived = false", userID).
		Group("genre").
		Scan(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count stories by genre: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Genre] = r.Count
	}
	return counts, nil
}
