// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes 注册 API 路由。
// 认证端点和公开分享端点不挂认证中间件，其余端点按用户限流。
func RegisterAPIRoutes(api *gin.RouterGroup, handlers Handlers, authMW, rateLimitMW gin.HandlerFunc) {
	// 认证端点：未登录请求按客户端 IP 限流
	auth := api.Group("/auth", rateLimitMW)
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}

	// 公开分享端点
	api.GET("/story/:id/public", handlers.Story.GetStoryPublic)

	// 需要认证的端点
	protected := api.Group("", authMW, rateLimitMW)
	{
		// 生成流水线
		protected.POST("/generate-scenes", handlers.Story.GenerateScenes)
		protected.POST("/generate-images/:story_id", handlers.Image.GenerateImages)

		// 历史
		protected.GET("/history", handlers.Story.GetHistory)
		protected.GET("/history/archived", handlers.Story.GetArchivedHistory)

		// 故事管理
		protected.GET("/story/:id", handlers.Story.GetStory)
		protected.PUT("/story/:id", handlers.Story.UpdateStory)
		protected.DELETE("/story/:id", handlers.Story.DeleteStory)
		protected.POST("/story/:id/archive", handlers.Story.ArchiveStory)
		protected.POST("/story/:id/unarchive", handlers.Story.UnarchiveStory)

		// 查询
		protected.POST("/search", handlers.Story.SearchStories)
		protected.POST("/filter", handlers.Story.FilterStories)
		protected.POST("/categorize", handlers.Story.CategorizeStory)
	}
}
