package model

// AllowedStatuses is the closed set of task states. The values are the
// Japanese labels the planning UI renders: not started, in progress,
// delayed, done, on hold.
var AllowedStatuses = []string{"未着手", "進行中", "遅延", "完了", "保留"}

func IsAllowedStatus(status string) bool {
	for _, s := range AllowedStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Task is one node of the work breakdown structure. Dates travel as
// ISO "YYYY-MM-DD" strings end to end; actual dates and the parent
// reference are optional.
type Task struct {
	TaskID           int64   `json:"task_id"`
	TaskName         string  `json:"task_name"`
	MajorCategory    string  `json:"major_category"`
	SubCategory      string  `json:"sub_category"`
	Assignee         string  `json:"assignee"`
	PlannedStartDate string  `json:"planned_start_date"`
	PlannedEndDate   string  `json:"planned_end_date"`
	ActualStartDate  *string `json:"actual_start_date"`
	ActualEndDate    *string `json:"actual_end_date"`
	ProgressPercent  int     `json:"progress_percent"`
	Status           string  `json:"status"`
	ParentTaskID     *int64  `json:"parent_task_id"`
	SortOrder        int     `json:"sort_order"`
}

// DeletedTask is the payload broadcast after a task row is removed.
type DeletedTask struct {
	TaskID int64 `json:"task_id"`
}
