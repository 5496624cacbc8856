package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"classroom/backend/internal/dto"
	"classroom/backend/internal/model"
)

// ── 归一化：model → 视图 DTO ──

func formatTime(t time.Time) string {
	return t.Format(dto.TimeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func toSubjectResponse(s *model.Subject) dto.SubjectResponse {
	return dto.SubjectResponse{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: formatTime(s.CreatedAt),
	}
}

func toClassResponse(c *model.Class) dto.ClassResponse {
	return dto.ClassResponse{
		ID:           c.ID,
		Name:         c.Name,
		SubjectName:  c.SubjectName,
		Description:  c.Description,
		MaxStudents:  c.MaxStudents,
		MinimumGrade: c.MinimumGrade,
		MaximumGrade: c.MaximumGrade,
		IsActive:     c.IsActive,
		JoinCode:     c.JoinCode,
		CreatedAt:    formatTime(c.CreatedAt),
	}
}

func toAssessmentResponse(a *model.Assessment) dto.AssessmentResponse {
	return dto.AssessmentResponse{
		ID:          a.ID,
		ClassID:     a.ClassID,
		Title:       a.Title,
		Description: a.Description,
		Type:        a.Type,
		MaxScore:    a.MaxScore,
		Date:        a.Date.Format(dto.DateLayout),
	}
}

func toGradeResponse(g *model.Grade) dto.GradeResponse {
	return dto.GradeResponse{
		ID:           g.ID,
		StudentID:    g.StudentID,
		AssessmentID: g.AssessmentID,
		Score:        g.Score,
		Feedback:     g.Feedback,
		Status:       g.Status,
		SubmittedAt:  formatTimePtr(g.SubmittedAt),
		GradedAt:     formatTimePtr(g.GradedAt),
	}
}

func toStudentProfile(p *model.Profile) *dto.StudentProfile {
	return &dto.StudentProfile{
		ID:       p.ID,
		Email:    p.Email,
		FullName: p.FullName,
	}
}

// ── 表单文本解析 ──

// optionalText 去除首尾空白，空串视为 null
func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// trimOptional 同 optionalText，但输入本身可以为 nil
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	return optionalText(*s)
}

// parseScore 解析分数文本：空串 → nil；支持逗号作小数点
func parseScore(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, strconv.ErrSyntax
	}
	return &v, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dto.DateLayout, strings.TrimSpace(s))
}
