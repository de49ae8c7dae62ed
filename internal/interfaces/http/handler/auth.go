// Package handler 提供 HTTP 请求处理器
package handler

import (
	"story-scene-api/internal/config"
	"story-scene-api/internal/domain/entity"
	"story-scene-api/internal/domain/repository"
	"story-scene-api/internal/interfaces/http/dto"
	"story-scene-api/pkg/logger"
	"story-scene-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	jwtManager *utils.JWTManager
	jwtCfg     config.JWTConfig
	userRepo   repository.UserRepository
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config, userRepo repository.UserRepository) *AuthHandler {
	return &AuthHandler{
		jwtManager: utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer),
		jwtCfg:     cfg.Security.JWT,
		userRepo:   userRepo,
	}
}

// Register 注册
// @Summary 用户注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	// 检查邮箱是否已存在
	exists, err := h.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		logger.Error(ctx, "failed to check email existence", err)
		dto.InternalError(c, "registration failed")
		return
	}
	if exists {
		dto.BadRequest(c, "email or username already exists")
		return
	}

	// 检查用户名是否已存在
	existing, err := h.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		logger.Error(ctx, "failed to check username existence", err)
		dto.InternalError(c, "registration failed")
		return
	}
	if existing != nil {
		dto.BadRequest(c, "email or username already exists")
		return
	}

	user := entity.NewUser(req.Username, req.Email)
	if err := user.SetPassword(req.Password); err != nil {
		logger.Error(ctx, "failed to hash password", err)
		dto.InternalError(c, "registration failed")
		return
	}

	if err := h.userRepo.Create(ctx, user); err != nil {
		logger.Error(ctx, "failed to create user", err)
		dto.InternalError(c, "registration failed")
		return
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "email", user.Email)

	c.JSON(201, dto.ToUserResponse(user))
}

// Login 登录
// @Summary 用户登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		logger.Error(ctx, "failed to get user", err)
		dto.InternalError(c, "login failed")
		return
	}

	// 不区分"用户不存在"与"密码错误"
	if user == nil || !user.CheckPassword(req.Password) {
		logger.Warn(ctx, "invalid login attempt", "email", req.Email)
		dto.Unauthorized(c, "invalid email or password")
		return
	}

	tokens, err := h.jwtManager.GenerateTokenPair(user.ID, user.Username, h.jwtCfg.Expiration, h.jwtCfg.RefreshExpiration)
	if err != nil {
		logger.Error(ctx, "failed to generate tokens", err)
		dto.InternalError(c, "login failed")
		return
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID)

	c.JSON(200, &dto.LoginResponse{
		AccessToken: tokens.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(h.jwtCfg.Expiration.Seconds()),
		User:        dto.ToUserResponse(user),
	})
}
