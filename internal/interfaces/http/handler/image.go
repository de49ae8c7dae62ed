// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"fmt"

	appimage "story-scene-api/internal/application/image"
	"story-scene-api/internal/domain/repository"
	"story-scene-api/internal/interfaces/http/dto"
	"story-scene-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ImageHandler 图像批处理处理器
type ImageHandler struct {
	coordinator *appimage.Coordinator
	storyRepo   repository.StoryRepository
	sceneRepo   repository.SceneRepository
}

// NewImageHandler 创建图像处理器
func NewImageHandler(
	coordinator *appimage.Coordinator,
	storyRepo repository.StoryRepository,
	sceneRepo repository.SceneRepository,
) *ImageHandler {
	return &ImageHandler{
		coordinator: coordinator,
		storyRepo:   storyRepo,
		sceneRepo:   sceneRepo,
	}
}

// GenerateImages 为故事的全部场景生成图像
// @Summary 生成场景图像
// @Description 按场景号顺序生成，限流时中止并返回已完成的部分
// @Tags Image
// @Produce json
// @Param story_id path string true "故事 ID"
// @Success 200 {object} dto.BatchImageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/generate-images/{story_id} [post]
func (h *ImageHandler) GenerateImages(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")
	storyID := c.Param("story_id")

	story, err := h.storyRepo.GetByIDForUser(ctx, storyID, userID)
	if err != nil {
		logger.Error(ctx, "failed to get story", err, "story_id", storyID)
		dto.InternalError(c, "error generating images")
		return
	}
	if story == nil {
		dto.NotFound(c, "story not found")
		return
	}

	sceneEntities, err := h.sceneRepo.ListByStory(ctx, storyID)
	if err != nil {
		logger.Error(ctx, "failed to list scenes", err, "story_id", storyID)
		dto.InternalError(c, "error generating images")
		return
	}
	if len(sceneEntities) == 0 {
		dto.NotFound(c, "no scenes found")
		return
	}

	style := story.Style
	if style == "" {
		style = "Cinematic"
	}

	plans := make([]appimage.ScenePlan, 0, len(sceneEntities))
	for _, s := range sceneEntities {
		plans = append(plans, appimage.ScenePlan{
			SceneNumber:     s.SceneNumber,
			SceneText:       s.SceneText,
			CinematicPrompt: s.CinematicPrompt,
		})
	}

	// 每个场景成功后立即落库，后续失败不影响已保存的图像
	result := h.coordinator.Run(ctx, storyID, style, plans, func(ctx context.Context, img appimage.GeneratedImage) {
		if err := h.sceneRepo.UpdateImage(ctx, storyID, img.SceneNumber, img.FilePath, img.FileURL); err != nil {
			logger.Error(ctx, "failed to save scene image", err,
				"story_id", storyID,
				"scene_number", img.SceneNumber,
			)
		}
	})

	h.recordBatchOutcome(ctx, storyID, result)

	imagePaths := make([]string, 0, len(result.Generated))
	imageURLs := make([]string, 0, len(result.Generated))
	for _, img := range result.Generated {
		imagePaths = append(imagePaths, img.FilePath)
		imageURLs = append(imageURLs, img.FileURL)
	}

	if result.RateLimited {
		completed := result.Completed
		total := result.Total
		c.JSON(200, &dto.BatchImageResponse{
			Message:     fmt.Sprintf("Rate limit reached. Generated %d/%d images. Please wait and try again later.", completed, total),
			ImagePaths:  imagePaths,
			ImageURLs:   imageURLs,
			Partial:     true,
			RateLimited: true,
			Completed:   &completed,
			Total:       &total,
		})
		return
	}

	if len(result.FailedScenes) > 0 {
		c.JSON(200, &dto.BatchImageResponse{
			Message:      fmt.Sprintf("Generated %d/%d images. Some scenes failed.", result.Completed, result.Total),
			ImagePaths:   imagePaths,
			ImageURLs:    imageURLs,
			Partial:      true,
			FailedScenes: result.FailedScenes,
		})
		return
	}

	logger.Info(ctx, "images generated", "story_id", storyID, "completed", result.Completed)

	c.JSON(200, &dto.BatchImageResponse{
		Message:    "Images generated successfully",
		ImagePaths: imagePaths,
		ImageURLs:  imageURLs,
		Partial:    false,
	})
}

// recordBatchOutcome 把失败场景号写回故事记录，便于后续重试
func (h *ImageHandler) recordBatchOutcome(ctx context.Context, storyID string, result *appimage.BatchImageResult) {
	failed := make([]int64, 0, len(result.FailedScenes))
	for _, n := range result.FailedScenes {
		failed = append(failed, int64(n))
	}
	if err := h.storyRepo.UpdateBatchOutcome(ctx, storyID, failed); err != nil {
		logger.Warn(ctx, "failed to record batch outcome", "error", err.Error(), "story_id", storyID)
	}
}
