//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	appimage "story-scene-api/internal/application/image"
	appstory "story-scene-api/internal/application/story"
	"story-scene-api/internal/config"
	"story-scene-api/internal/domain/repository"
	"story-scene-api/internal/infrastructure/genimage"
	"story-scene-api/internal/infrastructure/llm"
	"story-scene-api/internal/infrastructure/persistence/postgres"
	"story-scene-api/internal/infrastructure/persistence/redis"
	"story-scene-api/internal/interfaces/http/handler"
	"story-scene-api/internal/interfaces/http/middleware"
	"story-scene-api/internal/interfaces/http/router"
	workflowport "story-scene-api/internal/workflow/port"
)

// DataLayer 数据层依赖容器
type DataLayer struct {
	// PostgreSQL
	PgClient  *postgres.Client
	TxManager *postgres.TxManager
	UserRepo  *postgres.UserRepository
	StoryRepo *postgres.StoryRepository
	SceneRepo *postgres.SceneRepository

	// Redis
	RedisClient *redis.Client
	Cache       *redis.Cache
	RateLimiter *redis.RateLimiter
}

// PostgresOnlyDataLayer 仅包含 PostgreSQL 的数据层（用于 bootstrap）
type PostgresOnlyDataLayer struct {
	PgClient  *postgres.Client
	TxManager *postgres.TxManager
	UserRepo  *postgres.UserRepository
	StoryRepo *postgres.StoryRepository
	SceneRepo *postgres.SceneRepository
}

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		wire.Struct(new(DataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	wire.Build(
		PostgresSet,
		wire.Struct(new(PostgresOnlyDataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		PipelineSet,
		ImageSet,
		RouterSet,
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUserRepository,
	postgres.NewStoryRepository,
	postgres.NewSceneRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.StoryRepository), new(*postgres.StoryRepository)),
	wire.Bind(new(repository.SceneRepository), new(*postgres.SceneRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// PipelineSet 文本流水线提供者集合
var PipelineSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	appstory.NewLLMAnalyzer,
	wire.Bind(new(appstory.Analyzer), new(*appstory.LLMAnalyzer)),
	appstory.NewGenerator,
)

// ImageSet 图像生成提供者集合
var ImageSet = wire.NewSet(
	ProvideImageClient,
	ProvideBoundedInvoker,
	ProvideImageEngine,
	appimage.NewCoordinator,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewAuthHandler,
	handler.NewStoryHandler,
	handler.NewImageHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideImageClient 提供生成式图像服务客户端
func ProvideImageClient(ctx context.Context, cfg *config.Config) (*genimage.Client, error) {
	return genimage.NewClient(ctx, &cfg.Image)
}

// ProvideBoundedInvoker 提供带硬超时的调用器
func ProvideBoundedInvoker(client *genimage.Client, cfg *config.Config) *appimage.BoundedInvoker {
	return appimage.NewBoundedInvoker(client, cfg.Image.InvokeTimeout)
}

// ProvideImageEngine 提供单场景图像引擎
func ProvideImageEngine(invoker *appimage.BoundedInvoker, cfg *config.Config) *appimage.Engine {
	return appimage.NewEngine(invoker, cfg.Image.OutputDir, cfg.Image.BaseURL, cfg.Image.AspectRatio)
}
