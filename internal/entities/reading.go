package entities

import (
	"time"

	"gorm.io/datatypes"
)

// StatusRole is the semantic meaning of a status, independent of its display name.
// Statistics bucket by role so renaming a status never changes the numbers.
type StatusRole string

const (
	StatusRolePlanned    StatusRole = "planned"
	StatusRoleInProgress StatusRole = "in_progress"
	StatusRoleCompleted  StatusRole = "completed"
	StatusRoleCustom     StatusRole = "custom"
)

func (r StatusRole) Valid() bool {
	switch r {
	case StatusRolePlanned, StatusRoleInProgress, StatusRoleCompleted, StatusRoleCustom:
		return true
	}
	return false
}

type StatusCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"uniqueIndex;size:64" json:"name"`
	Role      StatusRole `gorm:"size:20;index" json:"role"`
	Protected bool       `gorm:"default:false" json:"protected"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (StatusCode) TableName() string {
	return "status_codes"
}

// StatusRecord is one immutable entry in a user's reading log for a book.
// The newest record (created_at, then id) is the current status.
type StatusRecord struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"index:idx_status_records_user_book,priority:1;not null" json:"user_id"`
	BookID    uint            `gorm:"index:idx_status_records_user_book,priority:2;index;not null" json:"book_id"`
	StatusID  uint            `gorm:"index;not null" json:"status_id"`
	Status    StatusCode      `gorm:"foreignKey:StatusID" json:"status"`
	StartDate *datatypes.Date `json:"start_date,omitempty"`
	EndDate   *datatypes.Date `json:"end_date,omitempty"`
	PagesRead *int            `json:"pages_read,omitempty"`
	CreatedAt time.Time       `gorm:"index:idx_status_records_user_book,priority:3" json:"created_at"`
}

func (StatusRecord) TableName() string {
	return "status_records"
}

type ReportType string

const (
	ReportTypeBookCard         ReportType = "book_card"
	ReportTypeCollectionGrowth ReportType = "collection_growth"
)

type Report struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"index;not null" json:"user_id"`
	ReportType  ReportType      `gorm:"size:32" json:"report_type"`
	BookID      *uint           `json:"book_id,omitempty"`
	PeriodFrom  *datatypes.Date `json:"period_from,omitempty"`
	PeriodTo    *datatypes.Date `json:"period_to,omitempty"`
	FileName    string          `gorm:"size:255" json:"file_name"`
	FilePath    string          `gorm:"size:1024" json:"-"`
	GeneratedAt time.Time       `gorm:"index" json:"generated_at"`
}

func (Report) TableName() string {
	return "reports"
}
