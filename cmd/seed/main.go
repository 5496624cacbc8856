package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"classroom/backend/config"
	"classroom/backend/internal/model"
	"classroom/backend/internal/repository"
	"classroom/backend/pkg/database"
	applogger "classroom/backend/pkg/logger"
)

// seed 写入一个可登录的教师与若干学生档案；已存在的邮箱跳过
//
//	go run ./cmd/seed -email teacher@school.edu -password secret123 \
//	    -students "zhang@school.edu:张三,li@school.edu:李四"
func main() {
	configPath := flag.String("config", "", "配置文件路径")
	email := flag.String("email", "", "教师邮箱")
	password := flag.String("password", "", "教师登录密码（至少 8 位）")
	name := flag.String("name", "教师", "教师姓名")
	students := flag.String("students", "", "学生列表，格式 email:姓名，逗号分隔")
	flag.Parse()

	if *email == "" || len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "必须提供 -email 与至少 8 位的 -password")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	if _, err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := repository.NewRepository(db)

	if err := ensureProfile(ctx, repo, *email, *name, model.RoleTeacher, *password, logger); err != nil {
		logger.Fatal("创建教师失败", zap.Error(err))
	}

	for _, entry := range strings.Split(*students, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		sEmail, sName, ok := strings.Cut(entry, ":")
		if !ok || strings.TrimSpace(sName) == "" {
			sName = sEmail
		}
		// 学生不登录本系统，写入随机口令的哈希
		if err := ensureProfile(ctx, repo, sEmail, sName, model.RoleStudent, uuid.NewString(), logger); err != nil {
			logger.Fatal("创建学生失败", zap.String("email", sEmail), zap.Error(err))
		}
	}

	logger.Info("种子数据写入完成")
}

func ensureProfile(ctx context.Context, repo *repository.Repository, email, name, role, password string, logger *zap.Logger) error {
	email = strings.TrimSpace(email)
	existing, err := repo.Profile.GetByEmail(ctx, email)
	if err == nil {
		logger.Info("档案已存在，跳过", zap.String("email", existing.Email), zap.String("role", existing.Role))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("查询档案失败: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码哈希失败: %w", err)
	}

	profile := &model.Profile{
		Email:        email,
		FullName:     strings.TrimSpace(name),
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := repo.Profile.Create(ctx, profile); err != nil {
		return fmt.Errorf("写入档案失败: %w", err)
	}

	logger.Info("档案已创建", zap.String("id", profile.ID), zap.String("email", profile.Email), zap.String("role", role))
	return nil
}
