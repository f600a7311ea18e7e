// @title ALCIE 人工评估后端 API
// @version 1.0
// @description ALCIE服饰图像描述持续学习研究的人工评估后端。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"

	"alcie_study_backend/internal/app"
	"alcie_study_backend/internal/config"
	"alcie_study_backend/pkg/configwatcher"
	"alcie_study_backend/pkg/logger"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	syncImages := flag.Bool("sync-images", false, "启动前把本地图片目录预置到存储后端")
	configPath := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	if *syncImages {
		uploaded, err := application.SyncImages(context.Background())
		if err != nil {
			log.Fatalf("Failed to sync images: %v", err)
		}
		log.Printf("Synced %d study images", uploaded)
	}

	// 配置热更新
	go configwatcher.WatchConfig(filepath.Join(*configPath, "config.yaml"), application.ApplyConfig)

	application.Run()
}
