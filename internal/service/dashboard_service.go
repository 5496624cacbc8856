package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"classroom/backend/config"
	"classroom/backend/internal/dto"
)

// DashboardService 仪表盘首屏
type DashboardService interface {
	// Load 并行加载学科与班级，两者都完成后合并返回
	Load(ctx context.Context, ownerID, theme string) *dto.DashboardResponse
}

type dashboardService struct {
	cfg      *config.UIConfig
	subjects SubjectService
	classes  ClassService
	logger   *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(cfg *config.UIConfig, subjects SubjectService, classes ClassService, logger *zap.Logger) DashboardService {
	return &dashboardService{cfg: cfg, subjects: subjects, classes: classes, logger: logger}
}

func (s *dashboardService) Load(ctx context.Context, ownerID, theme string) *dto.DashboardResponse {
	if !config.IsTheme(theme) {
		theme = s.cfg.Theme
	}

	var (
		subjects []dto.SubjectResponse
		classes  []dto.ClassResponse
	)
	// 网关失败由加载器自行降级为空列表；这里只上报请求被取消或超时
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		subjects = s.subjects.List(gctx, ownerID)
		return gctx.Err()
	})
	g.Go(func() error {
		classes = s.classes.List(gctx, ownerID)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("仪表盘加载被中断", zap.String("owner_id", ownerID), zap.Error(err))
	}

	s.logger.Debug("仪表盘已加载",
		zap.String("owner_id", ownerID),
		zap.String("theme", theme),
		zap.Int("subjects", len(subjects)),
		zap.Int("classes", len(classes)),
	)
	return &dto.DashboardResponse{
		Theme:    theme,
		Subjects: subjects,
		Classes:  classes,
	}
}
