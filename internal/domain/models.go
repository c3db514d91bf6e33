package domain

import "time"

type User struct {
	ID             int64
	Login          string
	HashedPassword string
	Username       string
	IconID         *int64
	IsVerified     bool
	IsAdmin        bool
}

// UserSummary is the member listing shape: no credential material.
type UserSummary struct {
	ID         int64  `json:"id"`
	Login      string `json:"login"`
	Username   string `json:"username"`
	IconID     *int64 `json:"icon_id"`
	IsVerified bool   `json:"is_verified"`
}

type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	IconID    *int64    `json:"icon_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectWithMembership is a project joined with the requesting user's
// membership metadata. CategoryID and JoinedAt are nil for global admins
// (who see every project) and for owned projects without an explicit row.
type ProjectWithMembership struct {
	ProjectID        int64      `json:"project_id"`
	ProjectName      string     `json:"project_name"`
	OwnerID          int64      `json:"owner_id"`
	CategoryID       *int64     `json:"category_id"`
	ProjectCreatedAt time.Time  `json:"project_created_at"`
	JoinedAt         *time.Time `json:"user_joined_at"`
}

type Membership struct {
	UserID     int64     `json:"user_id"`
	ProjectID  int64     `json:"project_id"`
	CategoryID *int64    `json:"category_id"`
	JoinedAt   time.Time `json:"joined_at"`
}

type Category struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"-"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

type TaskStatus string

const (
	StatusAssigned   TaskStatus = "assigned"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// TaskIndicator is the severity label shown on task cards.
type TaskIndicator string

const (
	IndicatorRed    TaskIndicator = "red"
	IndicatorOrange TaskIndicator = "orange"
	IndicatorYellow TaskIndicator = "yellow"
	IndicatorGreen  TaskIndicator = "green"
)

func (i TaskIndicator) Valid() bool {
	switch i {
	case IndicatorRed, IndicatorOrange, IndicatorYellow, IndicatorGreen:
		return true
	}
	return false
}

type Task struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Status       TaskStatus    `json:"status"`
	Indicator    TaskIndicator `json:"indicator"`
	ProjectID    int64         `json:"project_id"`
	OwnerID      int64         `json:"owner_id"`
	PerformerID  *int64        `json:"performer_id"`
	ParentTaskID *int64        `json:"parent_task_id"`
	Deadline     *time.Time    `json:"deadline"`
	CreatedAt    time.Time     `json:"created_at"`
	LastChange   time.Time     `json:"last_change"`
}

// TaskDetail is a task enriched with the names behind its foreign keys.
type TaskDetail struct {
	Task
	AuthorName     string  `json:"author_name"`
	AuthorEmail    string  `json:"author_email"`
	PerformerName  *string `json:"performer_name"`
	PerformerEmail *string `json:"performer_email"`
	ProjectName    string  `json:"project_name"`
}
