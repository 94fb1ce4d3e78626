package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/config"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/repository"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/database"
	applogger "github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/logger"
)

// app 各子命令共用的配置、日志与数据库连接
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func bootstrap() (*app, error) {
	// 1. 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, db: db}, nil
}

// migrate mysql/postgres 执行 SQL 迁移，sqlite 使用 AutoMigrate
func (a *app) migrate() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	err = database.RunMigrations(sqlDB, a.cfg.Database.Driver, a.logger)
	if errors.Is(err, database.ErrMigrationsUnsupported) {
		a.logger.Info("使用 AutoMigrate 建表", zap.String("driver", a.cfg.Database.Driver))
		return repository.AutoMigrate(a.db)
	}
	return err
}

func (a *app) close() {
	if sqlDB, _ := a.db.DB(); sqlDB != nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}
