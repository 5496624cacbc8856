package dto

// 响应中的时间统一为 RFC3339，测评日期为 YYYY-MM-DD
const (
	TimeLayout = "2006-01-02T15:04:05Z07:00"
	DateLayout = "2006-01-02"
)

// ConfirmRequest 破坏性操作的确认参数（?confirm=true）
type ConfirmRequest struct {
	Confirm bool `form:"confirm"`
}

// DashboardRequest 仪表盘查询参数
type DashboardRequest struct {
	Theme string `form:"theme" binding:"omitempty,oneof=legacy modern ultra"`
}

// DashboardResponse 仪表盘首屏数据：学科与班级并行加载
type DashboardResponse struct {
	Theme    string            `json:"theme"`
	Subjects []SubjectResponse `json:"subjects"`
	Classes  []ClassResponse   `json:"classes"`
}
