package model

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenRequest carries the refresh token for /auth/refresh and /auth/logout.
type TokenRequest struct {
	Token string `json:"token"`
}

type CreateTaskRequest struct {
	TaskName         string   `json:"task_name"`
	MajorCategory    string   `json:"major_category"`
	SubCategory      string   `json:"sub_category"`
	Assignee         string   `json:"assignee"`
	PlannedStartDate string   `json:"planned_start_date"`
	PlannedEndDate   string   `json:"planned_end_date"`
	ActualStartDate  *string  `json:"actual_start_date"`
	ActualEndDate    *string  `json:"actual_end_date"`
	ProgressPercent  *float64 `json:"progress_percent"`
	Status           string   `json:"status"`
	ParentTaskID     *int64   `json:"parent_task_id"`
	SortOrder        *int     `json:"sort_order"`
}

// UpdateTaskRequest is a partial update: nil means "leave unchanged".
type UpdateTaskRequest struct {
	TaskName         *string  `json:"task_name"`
	MajorCategory    *string  `json:"major_category"`
	SubCategory      *string  `json:"sub_category"`
	Assignee         *string  `json:"assignee"`
	PlannedStartDate *string  `json:"planned_start_date"`
	PlannedEndDate   *string  `json:"planned_end_date"`
	ActualStartDate  *string  `json:"actual_start_date"`
	ActualEndDate    *string  `json:"actual_end_date"`
	ProgressPercent  *float64 `json:"progress_percent"`
	Status           *string  `json:"status"`
	ParentTaskID     *int64   `json:"parent_task_id"`
	SortOrder        *int     `json:"sort_order"`
}

// Empty reports whether no recognized field is present.
func (r UpdateTaskRequest) Empty() bool {
	return r.TaskName == nil && r.MajorCategory == nil && r.SubCategory == nil &&
		r.Assignee == nil && r.PlannedStartDate == nil && r.PlannedEndDate == nil &&
		r.ActualStartDate == nil && r.ActualEndDate == nil && r.ProgressPercent == nil &&
		r.Status == nil && r.ParentTaskID == nil && r.SortOrder == nil
}

type CreateLinkRequest struct {
	SourceTaskID *int64 `json:"source_task_id"`
	TargetTaskID *int64 `json:"target_task_id"`
	LinkType     *int   `json:"link_type"`
}
