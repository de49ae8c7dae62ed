// Package main 数据库初始化工具：建表并创建演示账号
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"story-scene-api/internal/config"
	"story-scene-api/internal/domain/entity"
	"story-scene-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting database bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 迁移表结构
	fmt.Println("Running schema migration...")
	if err := dataLayer.PgClient.DB().WithContext(ctx).AutoMigrate(
		&entity.User{},
		&entity.Story{},
		&entity.Scene{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 4. 创建演示账号（可选，通过环境变量配置）
	demoEmail := os.Getenv("BOOTSTRAP_DEMO_EMAIL")
	if demoEmail == "" {
		fmt.Println("BOOTSTRAP_DEMO_EMAIL not set, skipping demo user.")
		fmt.Println("Bootstrap completed successfully.")
		return
	}
	demoUsername := os.Getenv("BOOTSTRAP_DEMO_USERNAME")
	if demoUsername == "" {
		demoUsername = "demo"
	}
	demoPassword := os.Getenv("BOOTSTRAP_DEMO_PASSWORD")
	if demoPassword == "" {
		demoPassword = "demo123" // 生产环境请务必通过环境变量设置
	}

	exists, err := dataLayer.UserRepo.ExistsByEmail(ctx, demoEmail)
	if err != nil {
		log.Fatalf("failed to check demo user existence: %v", err)
	}

	if exists {
		fmt.Printf("Demo user %s already exists.\n", demoEmail)
	} else {
		fmt.Printf("Creating demo user: %s...\n", demoEmail)
		user := entity.NewUser(demoUsername, demoEmail)
		if err := user.SetPassword(demoPassword); err != nil {
			log.Fatalf("failed to hash demo password: %v", err)
		}
		if err := dataLayer.UserRepo.Create(ctx, user); err != nil {
			log.Fatalf("failed to create demo user: %v", err)
		}
		fmt.Println("Demo user created successfully.")
	}

	fmt.Println("Bootstrap completed successfully.")
}
