package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"classroom/backend/internal/model"
)

// ── ExportGradebook 测试 ──

func TestExportService_ExportGradebook_Success(t *testing.T) {
	svc, store, teacher := setupTestServices()
	class := store.addClass(teacher.ID, "高一(3)班", 10)
	a := store.addProfile("a@school.edu", "张三", model.RoleStudent)
	b := store.addProfile("b@school.edu", "李四", model.RoleStudent)
	store.enroll(class.ID, a.ID)
	store.enroll(class.ID, b.ID)
	late := store.addAssessment(class.ID, "期末", 10, "2025-01-10")
	early := store.addAssessment(class.ID, "期中", 10, "2024-11-05")
	store.addGrade(early.ID, a.ID, floatPtr(8))
	store.addGrade(late.ID, a.ID, nil)

	buf, filename, err := svc.Export.ExportGradebook(context.Background(), teacher.ID, class.ID)
	if err != nil {
		t.Fatalf("期望成功，实际: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") || !strings.Contains(filename, "高一(3)班") {
		t.Errorf("文件名不正确: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("无法解析导出的 Excel: %v", err)
	}
	defer f.Close()

	// 列按日期升序：期中在前
	if v, _ := f.GetCellValue(gradebookSheet, "C1"); v != "期中" {
		t.Errorf("C1 期望 期中，实际 %q", v)
	}
	if v, _ := f.GetCellValue(gradebookSheet, "D1"); v != "期末" {
		t.Errorf("D1 期望 期末，实际 %q", v)
	}
	if v, _ := f.GetCellValue(gradebookSheet, "A2"); v != "张三" {
		t.Errorf("A2 期望 张三，实际 %q", v)
	}
	if v, _ := f.GetCellValue(gradebookSheet, "C2"); v != "8" {
		t.Errorf("C2 期望 8，实际 %q", v)
	}
	if v, _ := f.GetCellValue(gradebookSheet, "D2"); v != pendingCellText {
		t.Errorf("未评分应显示 %s，实际 %q", pendingCellText, v)
	}
	if v, _ := f.GetCellValue(gradebookSheet, "C3"); v != pendingCellText {
		t.Errorf("无成绩行应显示 %s，实际 %q", pendingCellText, v)
	}

	if v, _ := f.GetCellValue(assessmentsSheet, "B2"); v != "考试" {
		t.Errorf("测评类型应本地化，实际 %q", v)
	}
	if v, _ := f.GetCellValue(assessmentsSheet, "D2"); v != "2024-11-05" {
		t.Errorf("测评日期不正确，实际 %q", v)
	}
}

func TestExportService_ExportGradebook_EmptyClass(t *testing.T) {
	svc, store, teacher := setupTestServices()
	class := store.addClass(teacher.ID, "空班", 10)

	buf, _, err := svc.Export.ExportGradebook(context.Background(), teacher.ID, class.ID)
	if err != nil {
		t.Fatalf("空班级也应能导出，实际: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("导出内容不应为空")
	}
}

func TestExportService_ExportGradebook_ClassNotFound(t *testing.T) {
	svc, _, teacher := setupTestServices()

	_, _, err := svc.Export.ExportGradebook(context.Background(), teacher.ID, "nonexistent")
	if !errors.Is(err, ErrClassNotFound) {
		t.Errorf("期望 ErrClassNotFound，实际: %v", err)
	}
}
