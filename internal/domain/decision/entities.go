package decision

import (
	"time"

	"community-lending/internal/domain/apperr"
)

var (
	ErrNotFound       = apperr.New(apperr.KindNotFound, "decision_not_found", "decision not found")
	ErrAlreadyDecided = apperr.New(apperr.KindStateConflict, "invalid_state", "loan already has a decision")
)

type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// Decision records the single transition of a loan out of pending. The unique
// index on loan_id lets the store refuse a second one.
type Decision struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	DecisionID string    `gorm:"column:decision_id;type:char(32);not null;uniqueIndex:ux_loan_decisions_decision_id"`
	LoanID     uint64    `gorm:"column:loan_id;not null;uniqueIndex:ux_loan_decisions_loan"`
	DeciderID  string    `gorm:"column:decider_id;type:char(32);not null"`
	Outcome    Outcome   `gorm:"column:outcome;type:enum('approved','rejected');not null"`
	Reason     string    `gorm:"column:reason;type:text"`
	DecidedAt  time.Time `gorm:"column:decided_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Decision) TableName() string { return "loan_decisions" }
