package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"classroom/backend/internal/model"
	"classroom/backend/internal/repository"
	pkgerrors "classroom/backend/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

const (
	gradebookSheet   = "成绩册"
	assessmentsSheet = "测评列表"
	pendingCellText  = "待评分"
)

var assessmentTypeNames = map[string]string{
	model.AssessmentExam:       "考试",
	model.AssessmentAssignment: "作业",
	model.AssessmentQuiz:       "小测",
	model.AssessmentActivity:   "活动",
}

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportGradebook 导出班级成绩册为 Excel
	ExportGradebook(ctx context.Context, ownerID, classID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportGradebook — 导出班级成绩册
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "成绩册"：行 = 在册学生，列 = 测评（按日期升序）
//   - 单元格：分数；未录入显示 "待评分"
//   - Sheet "测评列表"：标题 / 类型 / 满分 / 日期
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportGradebook(ctx context.Context, ownerID, classID string) (*bytes.Buffer, string, error) {
	// 1. 班级与花名册
	class, err := ownedClass(ctx, s.repo, s.logger, ownerID, classID)
	if err != nil {
		return nil, "", err
	}
	roster, err := loadRoster(ctx, s.repo, classID)
	if err != nil {
		s.logger.Error("加载花名册失败", zap.String("class_id", classID), zap.Error(err))
		return nil, "", err
	}

	// 2. 测评（按日期升序作为列顺序）
	assessments, err := s.repo.Assessment.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("加载测评失败", zap.String("class_id", classID), zap.Error(err))
		return nil, "", pkgerrors.Gateway("select", "assessments", err)
	}
	sort.SliceStable(assessments, func(i, j int) bool {
		return assessments[i].Date.Before(assessments[j].Date)
	})

	// 3. 成绩索引: "assessmentID:studentID" → score
	ids := make([]string, 0, len(assessments))
	for _, a := range assessments {
		ids = append(ids, a.ID)
	}
	grades, err := s.repo.Grade.ListByAssessments(ctx, ids)
	if err != nil {
		s.logger.Error("加载成绩失败", zap.String("class_id", classID), zap.Error(err))
		return nil, "", pkgerrors.Gateway("select", "grades", err)
	}
	scores := make(map[string]float64, len(grades))
	for _, g := range grades {
		if g.Score != nil {
			scores[g.AssessmentID+":"+g.StudentID] = *g.Score
		}
	}

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(gradebookSheet)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetColWidth(gradebookSheet, "A", "A", 20)
	f.SetColWidth(gradebookSheet, "B", "B", 28)
	if len(assessments) > 0 {
		f.SetColWidth(gradebookSheet, colName(2), colName(1+len(assessments)), 14)
	}

	// 表头
	f.SetCellValue(gradebookSheet, cell("A", 1), "姓名")
	f.SetCellValue(gradebookSheet, cell("B", 1), "邮箱")
	for i, a := range assessments {
		f.SetCellValue(gradebookSheet, cell(colName(2+i), 1), a.Title)
	}
	f.SetCellStyle(gradebookSheet, "A1", cell(colName(1+len(assessments)), 1), headerStyle)

	// 数据行
	row := 2
	for _, e := range roster {
		name, email := e.StudentID, ""
		if e.Profile != nil {
			name, email = e.Profile.FullName, e.Profile.Email
		}
		f.SetCellValue(gradebookSheet, cell("A", row), name)
		f.SetCellValue(gradebookSheet, cell("B", row), email)

		for i, a := range assessments {
			if score, ok := scores[a.ID+":"+e.StudentID]; ok {
				f.SetCellValue(gradebookSheet, cell(colName(2+i), row), score)
			} else {
				f.SetCellValue(gradebookSheet, cell(colName(2+i), row), pendingCellText)
			}
		}
		row++
	}

	// 测评列表
	if _, err := f.NewSheet(assessmentsSheet); err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetColWidth(assessmentsSheet, "A", "A", 28)
	f.SetColWidth(assessmentsSheet, "B", "D", 12)
	for i, h := range []string{"标题", "类型", "满分", "日期"} {
		f.SetCellValue(assessmentsSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(assessmentsSheet, "A1", "D1", headerStyle)
	for i, a := range assessments {
		r := i + 2
		f.SetCellValue(assessmentsSheet, cell("A", r), a.Title)
		f.SetCellValue(assessmentsSheet, cell("B", r), assessmentTypeName(a.Type))
		f.SetCellValue(assessmentsSheet, cell("C", r), a.MaxScore)
		f.SetCellValue(assessmentsSheet, cell("D", r), a.Date.Format("2006-01-02"))
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("成绩册已导出",
		zap.String("class_id", classID),
		zap.Int("students", len(roster)),
		zap.Int("assessments", len(assessments)),
	)
	filename := fmt.Sprintf("成绩册_%s.xlsx", class.Name)
	return buf, filename, nil
}

// ── 辅助函数 ──

func assessmentTypeName(t string) string {
	if name, ok := assessmentTypeNames[t]; ok {
		return name
	}
	return t
}

// colName 0 起始列号 → Excel 列名
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
