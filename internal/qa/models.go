package qa

import "time"

type Status string

// Turn lifecycle. COMPLETED and FAILED are terminal: the engine never
// mutates a turn again once it reaches either.
const (
	StatusPending    Status = "PENDING"
	StatusGenerating Status = "GENERATING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Turn is one question/answer exchange tied to a report.
type Turn struct {
	ID       string `gorm:"primaryKey;size:26" json:"qa_id"`
	ReportID string `gorm:"size:26;not null;index:idx_qa_report_timeline,priority:1" json:"report_id"`

	UserID        uint64 `gorm:"not null;index" json:"-"`
	MarketplaceID string `gorm:"type:varchar(20);not null" json:"marketplace_id"`

	Question string `gorm:"type:text;not null" json:"question"`
	// Thought holds chain-of-thought text from reasoning models. Never
	// replayed into the context window.
	Thought *string `gorm:"type:text" json:"thought,omitempty"`
	// Answer stays null until the turn completes.
	Answer *string `gorm:"type:text" json:"answer"`

	Status Status `gorm:"type:varchar(20);not null;default:PENDING;index" json:"status"`

	CreatedAt time.Time `gorm:"index:idx_qa_report_timeline,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Turn) TableName() string { return "report_qa_turns" }
