package mysql

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	contributionDomain "community-lending/internal/domain/contribution"
	decisionDomain "community-lending/internal/domain/decision"
	loanDomain "community-lending/internal/domain/loan"
	memberDomain "community-lending/internal/domain/member"
	notificationDomain "community-lending/internal/domain/notification"
)

// Migrate creates or updates the MySQL schema from the domain models.
func Migrate(db *gorm.DB) error {
	err := db.Set("gorm:table_options", "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4").AutoMigrate(
		&memberDomain.User{},
		&loanDomain.Loan{},
		&loanDomain.Payment{},
		&decisionDomain.Decision{},
		&notificationDomain.Notification{},
		&contributionDomain.Limit{},
		&contributionDomain.Contribution{},
		&contributionDomain.Reward{},
	)
	return errors.Wrap(err, "auto-migrate")
}
