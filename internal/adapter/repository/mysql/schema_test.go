package mysql

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- SQLite-friendly schemas only for tests (no ENUM, no DECIMAL(p,s)) ---

type loanSQLite struct {
	ID              uint64          `gorm:"primaryKey;column:id"`
	LoanID          string          `gorm:"size:32;uniqueIndex;column:loan_id"`
	BorrowerID      string          `gorm:"size:32;column:borrower_id"`
	Principal       decimal.Decimal `gorm:"type:numeric;column:principal"`
	InterestRate    decimal.Decimal `gorm:"type:numeric;column:interest_rate"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric;column:total_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:numeric;column:remaining_amount"`
	Purpose         string          `gorm:"column:purpose"`
	Status          string          `gorm:"type:text;column:status"` // ← no enum
	RequestedAt     time.Time       `gorm:"column:requested_at"`
	DueDate         *time.Time      `gorm:"column:due_date"`
	DecidedBy       *string         `gorm:"column:decided_by"`
	DecidedAt       *time.Time      `gorm:"column:decided_at"`
	RejectionReason string          `gorm:"column:rejection_reason"`
	PaidOffAt       *time.Time      `gorm:"column:paid_off_at"`
	Version         uint64          `gorm:"column:version;default:1"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (loanSQLite) TableName() string { return "loans" }

type paymentSQLite struct {
	ID        uint64          `gorm:"primaryKey;column:id"`
	PaymentID string          `gorm:"size:32;uniqueIndex;column:payment_id"`
	LoanID    uint64          `gorm:"column:loan_id"`
	PayerID   string          `gorm:"column:payer_id"`
	Amount    decimal.Decimal `gorm:"type:numeric;column:amount"`
	Reference string          `gorm:"uniqueIndex;column:reference"`
	PaidAt    time.Time       `gorm:"column:paid_at"`
	Notes     string          `gorm:"column:notes"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

func (paymentSQLite) TableName() string { return "loan_payments" }

type decisionSQLite struct {
	ID         uint64    `gorm:"primaryKey;column:id;autoIncrement"`
	DecisionID string    `gorm:"size:64;uniqueIndex;column:decision_id"`
	LoanID     uint64    `gorm:"uniqueIndex;column:loan_id"`
	DeciderID  string    `gorm:"column:decider_id"`
	Outcome    string    `gorm:"type:text;column:outcome"`
	Reason     string    `gorm:"column:reason"`
	DecidedAt  time.Time `gorm:"column:decided_at"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (decisionSQLite) TableName() string { return "loan_decisions" }

type userSQLite struct {
	ID        uint64    `gorm:"primaryKey;column:id"`
	UserID    string    `gorm:"size:32;uniqueIndex;column:user_id"`
	FullName  string    `gorm:"column:full_name"`
	Email     string    `gorm:"column:email"`
	Role      string    `gorm:"type:text;column:role"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userSQLite) TableName() string { return "users" }

type notificationSQLite struct {
	ID                uint64    `gorm:"primaryKey;column:id"`
	NotificationID    string    `gorm:"size:32;uniqueIndex;column:notification_id"`
	UserID            string    `gorm:"column:user_id"`
	Title             string    `gorm:"column:title"`
	Message           string    `gorm:"column:message"`
	Type              string    `gorm:"type:text;column:type"`
	RelatedEntityType string    `gorm:"column:related_entity_type"`
	RelatedEntityID   string    `gorm:"column:related_entity_id"`
	IsRead            bool      `gorm:"column:is_read"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (notificationSQLite) TableName() string { return "notifications" }

type limitSQLite struct {
	ID                  uint64              `gorm:"primaryKey;column:id"`
	LimitID             string              `gorm:"size:32;uniqueIndex;column:limit_id"`
	GoalID              string              `gorm:"column:goal_id"`
	FixedAmount         decimal.NullDecimal `gorm:"type:numeric;column:fixed_amount"`
	MinimumAmount       decimal.NullDecimal `gorm:"type:numeric;column:minimum_amount"`
	MaximumAmount       decimal.NullDecimal `gorm:"type:numeric;column:maximum_amount"`
	MaximumTotalPerUser decimal.NullDecimal `gorm:"type:numeric;column:maximum_total_per_user"`
	IsActive            bool                `gorm:"column:is_active"`
	CreatedAt           time.Time           `gorm:"column:created_at"`
	UpdatedAt           time.Time           `gorm:"column:updated_at"`
	DeletedAt           gorm.DeletedAt      `gorm:"column:deleted_at"`
}

func (limitSQLite) TableName() string { return "contribution_limits" }

type contributionSQLite struct {
	ID             uint64          `gorm:"primaryKey;column:id"`
	ContributionID string          `gorm:"size:32;uniqueIndex;column:contribution_id"`
	UserID         string          `gorm:"column:user_id"`
	GoalID         string          `gorm:"column:goal_id"`
	Amount         decimal.Decimal `gorm:"type:numeric;column:amount"`
	ContributedAt  time.Time       `gorm:"column:contributed_at"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
}

func (contributionSQLite) TableName() string { return "contributions" }

type rewardSQLite struct {
	ID           uint64          `gorm:"primaryKey;column:id"`
	RewardID     string          `gorm:"size:32;uniqueIndex;column:reward_id"`
	Name         string          `gorm:"column:name"`
	Description  string          `gorm:"column:description"`
	Threshold    decimal.Decimal `gorm:"type:numeric;column:threshold"`
	RewardAmount decimal.Decimal `gorm:"type:numeric;column:reward_amount"`
	RewardType   string          `gorm:"column:reward_type"`
	ValidFrom    time.Time       `gorm:"column:valid_from"`
	ValidUntil   *time.Time      `gorm:"column:valid_until"`
	IsActive     bool            `gorm:"column:is_active"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (rewardSQLite) TableName() string { return "contribution_rewards" }

// openTestDB creates an in-memory sqlite DB and migrates ONLY the sqlite-safe schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// one connection, otherwise every new connection sees an empty :memory: db
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// IMPORTANT: migrate the sqlite-safe models, NOT the domain models.
	if err := db.AutoMigrate(
		&loanSQLite{}, &paymentSQLite{}, &decisionSQLite{}, &userSQLite{},
		&notificationSQLite{}, &limitSQLite{}, &contributionSQLite{}, &rewardSQLite{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
