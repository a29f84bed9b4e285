package model

// Link types follow the Gantt dependency convention:
// 0 finish-to-start, 1 start-to-start, 2 finish-to-finish, 3 start-to-finish.
const (
	LinkFinishToStart  = 0
	LinkStartToStart   = 1
	LinkFinishToFinish = 2
	LinkStartToFinish  = 3
)

func IsAllowedLinkType(linkType int) bool {
	return linkType >= LinkFinishToStart && linkType <= LinkStartToFinish
}

// Link is a dependency edge between two tasks.
type Link struct {
	LinkID       int64 `json:"link_id"`
	SourceTaskID int64 `json:"source_task_id"`
	TargetTaskID int64 `json:"target_task_id"`
	LinkType     int   `json:"link_type"`
}

// DeletedLink is the payload broadcast after a link row is removed.
type DeletedLink struct {
	LinkID int64 `json:"link_id"`
}
