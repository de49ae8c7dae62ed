// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	appstory "story-scene-api/internal/application/story"
	storymodel "story-scene-api/internal/application/story/model"
	"story-scene-api/internal/config"
	"story-scene-api/internal/domain/entity"
	"story-scene-api/internal/domain/repository"
	"story-scene-api/internal/infrastructure/persistence/redis"
	"story-scene-api/internal/interfaces/http/dto"
	"story-scene-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// 摘要在 Redis 中的保留时间
const summaryTTL = 24 * time.Hour

// StoryHandler 故事处理器
type StoryHandler struct {
	generator *appstory.Generator
	analyzer  appstory.Analyzer
	storyRepo repository.StoryRepository
	sceneRepo repository.SceneRepository
	cache     *redis.Cache
	tx        repository.Transactor
	maxScenes int
}

// NewStoryHandler 创建故事处理器
func NewStoryHandler(
	cfg *config.Config,
	generator *appstory.Generator,
	analyzer appstory.Analyzer,
	storyRepo repository.StoryRepository,
	sceneRepo repository.SceneRepository,
	cache *redis.Cache,
	tx repository.Transactor,
) *StoryHandler {
	return &StoryHandler{
		generator: generator,
		analyzer:  analyzer,
		storyRepo: storyRepo,
		sceneRepo: sceneRepo,
		cache:     cache,
		tx:        tx,
		maxScenes: cfg.Image.MaxScenes,
	}
}

// GenerateScenes 从故事文本生成场景
// @Summary 生成场景
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.GenerateScenesRequest true "故事输入"
// @Success 200 {object} dto.StoryResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/generate-scenes [post]
func (h *StoryHandler) GenerateScenes(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")

	var req dto.GenerateScenesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	maxScenes := req.MaxScenes
	if maxScenes <= 0 || maxScenes > h.maxScenes {
		maxScenes = h.maxScenes
	}

	result := h.generator.Generate(ctx, req.Prompt, maxScenes)

	// 请求显式指定的风格优先于分类结果
	style := result.Style
	if req.Style != "" {
		style = req.Style
	}

	// 先落库故事记录，流水线失败时保留 failed 状态的记录
	story := entity.NewStory(userID, req.Prompt)
	story.Title = result.Title
	story.OriginalTitle = result.OriginalTitle
	story.Genre = result.Genre
	story.Style = style
	story.Summary = result.Summary

	if err := h.storyRepo.Create(ctx, story); err != nil {
		logger.Error(ctx, "failed to create story", err)
		dto.InternalError(c, "error generating scenes")
		return
	}

	if result.Status == storymodel.GenerationStatusFailed {
		story.MarkFailed()
		if err := h.storyRepo.UpdateStatus(ctx, story.ID, entity.StoryStatusFailed); err != nil {
			logger.Error(ctx, "failed to mark story failed", err, "story_id", story.ID)
		}
		dto.InternalError(c, "error generating scenes")
		return
	}

	sceneEntities := make([]*entity.Scene, 0, len(result.Scenes))
	for _, s := range result.Scenes {
		sceneEntities = append(sceneEntities, &entity.Scene{
			StoryID:           story.ID,
			SceneNumber:       s.SceneNumber,
			SceneText:         s.SceneText,
			CinematicPrompt:   s.CinematicPrompt,
			ConfidenceScore:   s.ConfidenceScore,
			CompletenessScore: s.CompletenessScore,
		})
	}

	// 场景写入与完成状态在同一事务中提交
	story.MarkCompleted()
	err := h.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := h.sceneRepo.CreateBatch(ctx, sceneEntities); err != nil {
			return err
		}
		return h.storyRepo.Update(ctx, story)
	})
	if err != nil {
		logger.Error(ctx, "failed to save scenes", err, "story_id", story.ID)
		if uerr := h.storyRepo.UpdateStatus(ctx, story.ID, entity.StoryStatusFailed); uerr != nil {
			logger.Error(ctx, "failed to mark story failed", uerr, "story_id", story.ID)
		}
		dto.InternalError(c, "error generating scenes")
		return
	}

	if err := h.cache.Set(ctx, redis.StorySummaryKey(story.ID), result.Summary, summaryTTL); err != nil {
		logger.Warn(ctx, "failed to cache story summary", "error", err.Error(), "story_id", story.ID)
	}

	logger.Info(ctx, "story generated",
		"story_id", story.ID,
		"user_id", userID,
		"scenes", len(result.Scenes),
	)

	scenes := make([]dto.SceneOutput, 0, len(result.Scenes))
	for _, s := range result.Scenes {
		scenes = append(scenes, dto.ToSceneOutput(s))
	}

	c.JSON(200, &dto.StoryResponse{
		StoryID:       story.ID,
		Title:         story.Title,
		Genre:         story.Genre,
		Style:         story.Style,
		Scenes:        scenes,
		Summary:       result.Summary,
		TotalScenes:   len(scenes),
		Status:        string(story.Status),
		CreatedAt:     story.CreatedAt,
		OriginalTitle: story.OriginalTitle,
	})
}

// GetHistory 获取用户故事历史
// @Summary 故事历史
// @Tags Story
// @Produce json
// @Success 200 {array} dto.StoryListItem
// @Router /api/history [get]
func (h *StoryHandler) GetHistory(c *gin.Context) {
	h.listStories(c, false)
}

// GetArchivedHistory 获取已归档的故事历史
// @Summary 归档历史
// @Tags Story
// @Produce json
// @Success 200 {array} dto.StoryListItem
// @Router /api/history/archived [get]
func (h *StoryHandler) GetArchivedHistory(c *gin.Context) {
	h.listStories(c, true)
}

func (h *StoryHandler) listStories(c *gin.Context, archived bool) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")
	page := dto.BindPage(c)

	result, err := h.storyRepo.ListByUser(ctx, userID, archived, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list stories", err, "user_id", userID)
		dto.InternalError(c, "failed to load history")
		return
	}

	c.JSON(200, dto.ToStoryListItems(result.Items))
}

// GetStory 获取故事详情（需登录）
// @Summary 故事详情
// @Tags Story
// @Produce json
// @Param id path string true "故事 ID"
// @Success 200 {object} dto.StoryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/story/{id} [get]
func (h *StoryHandler) GetStory(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")
	storyID := c.Param("id")

	story, err := h.storyRepo.GetByIDForUser(ctx, storyID, userID)
	if err != nil {
		logger.Error(ctx, "failed to get story", err, "story_id", storyID)
		dto.InternalError(c, "failed to load story")
		return
	}
	if story == nil {
		dto.NotFound(c, "story not found")
		return
	}

	h.respondStoryDetail(c, story)
}

// GetStoryPublic 获取故事详情（公开分享，无需登录）
// @Summary 公开故事详情
// @Tags Story
// @Produce json
// @Param id path string true "故事 ID"
// @Success 200 {object} dto.StoryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/story/{id}/public [get]
func (h *StoryHandler) GetStoryPublic(c *gin.Context) {
	ctx := c.Request.Context()
	storyID := c.Param("id")

	story, err := h.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		logger.Error(ctx, "failed to get story", err, "story_id", storyID)
		dto.InternalError(c, "failed to load story")
		return
	}
	if story == nil {
		dto.NotFound(c, "story not found")
		return
	}

	h.respondStoryDetail(c, story)
}

func (h *StoryHandler) respondStoryDetail(c *gin.Context, story *entity.Story) {
	ctx := c.Request.Context()

	scenes, err := h.sceneRepo.ListByStory(ctx, story.ID)
	if err != nil {
		logger.Error(ctx, "failed to list scenes", err, "story_id", story.ID)
		dto.InternalError(c, "failed to load story")
		return
	}

	// 摘要优先读缓存，缓存失效时回退到故事记录
	summary := story.Summary
	if cached, err := h.cache.Get(ctx, redis.StorySummaryKey(story.ID)); err == nil && len(cached) > 0 {
		summary = string(cached)
	}

	c.JSON(200, dto.ToStoryResponse(story, scenes, summary))
}

// UpdateStory 更新故事标题
// @Summary 更新故事
// @Tags Story
// @Accept json
// @Produce json
// @Param id path string true "故事 ID"
// @Param body body dto.UpdateStoryRequest true "更新内容"
// @Success 200 {object} map[string]any
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/story/{id} [put]
func (h *StoryHandler) UpdateStory(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")
	storyID := c.Param("id")

	var req dto.UpdateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "title is required")
		return
	}

	if err := h.storyRepo.UpdateTitle(ctx, storyID, userID, req.Title); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			dto.NotFound(c, "story not found")
			return
		}
		logger.Error(ctx, "failed to update story title", err, "story_id", storyID)
		dto.InternalError(c, "failed to update story")
		return
	}

	c.JSON(200, gin.H{"message": "Story updated successfully", "story_id": storyID})
}

// DeleteStory 删除故事及其场景
// @Summary 删除故事
// @Tags Story
// @Produce json
// @Param id path string true "故事 ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/story/{id} [delete]
func (h *StoryHandler) DeleteStory(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")
	storyID := c.Param("id")

	if err := h.storyRepo.Delete(ctx, storyID, userID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			dto.NotFound(c, "story not found")
			return
		}
		logger.Error(ctx, "failed to delete story", err, "story_id", storyID)
		dto.InternalError(c, "failed to delete story")
		return
	}

	if err := h.cache.InvalidateStory(ctx, storyID); err != nil {
		logger.Warn(ctx, "failed to invalidate story cache", "error", err.Error(), "story_id", storyID)
	}

	c.JSON(200, gin.H{"message": "Story deleted successfully", "story_id": storyID})
}

// ArchiveStory 归档故事
// @Summary 归档故事
// @Tags Story
// @Produce json
// @Param id path string true "故事 ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/story/{id}/archive [post]
func (h *StoryHandler) ArchiveStory(c *gin.Context) {
	h.setArchived(c, true, "Story archived successfully")
}

// UnarchiveStory 取消归档
// @Summary 取消归档
// @Tags Story
// @Produce json
// @Param id path string true "故事 ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/story/{id}/unarchive [post]
func (h *StoryHandler) UnarchiveStory(c *gin.Context) {
	h.setArchived(c, false, "Story unarchived successfully")
}

func (h *StoryHandler) setArchived(c *gin.Context, archived bool, message string) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")
	storyID := c.Param("id")

	if err := h.storyRepo.SetArchived(ctx, storyID, userID, archived); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			dto.NotFound(c, "story not found")
			return
		}
		logger.Error(ctx, "failed to set archived flag", err, "story_id", storyID)
		dto.InternalError(c, "failed to update story")
		return
	}

	c.JSON(200, gin.H{"message": message, "story_id": storyID})
}

// SearchStories 按关键字搜索故事
// @Summary 搜索故事
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.SearchQuery true "搜索条件"
// @Success 200 {array} dto.StoryListItem
// @Router /api/search [post]
func (h *StoryHandler) SearchStories(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")

	var req dto.SearchQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "query is required")
		return
	}

	page := dto.BindPage(c)
	result, err := h.storyRepo.Search(ctx, userID, req.Query, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to search stories", err, "user_id", userID)
		dto.InternalError(c, "search failed")
		return
	}

	c.JSON(200, dto.ToStoryListItems(result.Items))
}

// FilterStories 按体裁/风格筛选故事
// @Summary 筛选故事
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.FilterQuery true "筛选条件"
// @Success 200 {array} dto.StoryListItem
// @Router /api/filter [post]
func (h *StoryHandler) FilterStories(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")

	var req dto.FilterQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	page := dto.BindPage(c)
	filter := repository.StoryFilter{Genre: req.Genre, Style: req.Style}
	result, err := h.storyRepo.Filter(ctx, userID, filter, repository.NewPagination(page.Page, page.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to filter stories", err, "user_id", userID)
		dto.InternalError(c, "filter failed")
		return
	}

	c.JSON(200, dto.ToStoryListItems(result.Items))
}

// CategorizeStory 对任意故事文本做体裁/风格分类
// @Summary 分类故事
// @Tags Story
// @Accept json
// @Produce json
// @Param body body dto.CategorizeRequest true "故事文本"
// @Success 200 {object} dto.ClassificationResponse
// @Router /api/categorize [post]
func (h *StoryHandler) CategorizeStory(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "story_text is required")
		return
	}

	classification, err := h.analyzer.Classify(ctx, req.StoryText)
	if err != nil {
		logger.Error(ctx, "classification failed", err)
		dto.InternalError(c, "categorization failed")
		return
	}

	c.JSON(200, &dto.ClassificationResponse{
		Genre:      classification.Genre,
		Style:      classification.Style,
		Confidence: classification.Confidence,
	})
}
