package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string
	AppPort     string
	LogLevel    string
	GormLogMode string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string
	// connection pool
	MySQLMaxOpen int
	MySQLMaxIdle int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IdempTTLSecs int

	KafkaBrokers           []string
	KafkaNotificationTopic string

	LoanTermDays     int
	LoanInterestRate decimal.Decimal
	LoanMaxPerYear   int

	OverdueCheckInterval     time.Duration
	OverdueRetryInterval     time.Duration
	NotificationDedupeWindow time.Duration

	RiskColdStartCeiling       decimal.Decimal
	RiskLowCeiling             decimal.Decimal
	RiskMediumCeiling          decimal.Decimal
	RiskContributionMultiplier decimal.Decimal
}

var defaults = map[string]any{
	"APP_ENV":        "development",
	"APP_PORT":       "8080",
	"LOG_LEVEL":      "info",
	"GORM_LOG_LEVEL": "warn",

	"MYSQL_HOST": "mysql",
	"MYSQL_PORT": "3306",
	"MYSQL_DB":   "lending",
	"MYSQL_USER": "lending",
	"MYSQL_PASS": "lending",

	"MYSQL_MAX_OPEN_CONNS": 30,
	"MYSQL_MAX_IDLE_CONNS": 10,

	"REDIS_ADDR":     "redis:6379",
	"REDIS_DB":       0,
	"REDIS_PASSWORD": "",

	"IDEMPOTENCY_TTL_SECONDS": 300,

	"KAFKA_BROKERS":            "",
	"KAFKA_NOTIFICATION_TOPIC": "lending.notifications",

	"LOAN_TERM_DAYS":     90,
	"LOAN_INTEREST_RATE": "10",
	"LOAN_MAX_PER_YEAR":  1,

	"OVERDUE_CHECK_INTERVAL":     "24h",
	"OVERDUE_RETRY_INTERVAL":     "1h",
	"NOTIFICATION_DEDUPE_WINDOW": "0s",

	"RISK_COLD_START_CEILING":      "1000",
	"RISK_LOW_CEILING":             "20000",
	"RISK_MEDIUM_CEILING":          "5000",
	"RISK_CONTRIBUTION_MULTIPLIER": "3",
}

// Load reads defaults, then the YAML file named by CONFIG_FILE (if any),
// then the environment.
func Load() (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if f := strings.TrimSpace(v.GetString("CONFIG_FILE")); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", f)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		AppEnv:      v.GetString("APP_ENV"),
		AppPort:     v.GetString("APP_PORT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		GormLogMode: v.GetString("GORM_LOG_LEVEL"),

		MySQLHost:    v.GetString("MYSQL_HOST"),
		MySQLPort:    v.GetString("MYSQL_PORT"),
		MySQLDB:      v.GetString("MYSQL_DB"),
		MySQLUser:    v.GetString("MYSQL_USER"),
		MySQLPass:    v.GetString("MYSQL_PASS"),
		MySQLMaxOpen: v.GetInt("MYSQL_MAX_OPEN_CONNS"),
		MySQLMaxIdle: v.GetInt("MYSQL_MAX_IDLE_CONNS"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		IdempTTLSecs: v.GetInt("IDEMPOTENCY_TTL_SECONDS"),

		KafkaBrokers:           splitList(v.GetString("KAFKA_BROKERS")),
		KafkaNotificationTopic: v.GetString("KAFKA_NOTIFICATION_TOPIC"),

		LoanTermDays:   v.GetInt("LOAN_TERM_DAYS"),
		LoanMaxPerYear: v.GetInt("LOAN_MAX_PER_YEAR"),

		OverdueCheckInterval:     v.GetDuration("OVERDUE_CHECK_INTERVAL"),
		OverdueRetryInterval:     v.GetDuration("OVERDUE_RETRY_INTERVAL"),
		NotificationDedupeWindow: v.GetDuration("NOTIFICATION_DEDUPE_WINDOW"),
	}

	decimals := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"LOAN_INTEREST_RATE", &c.LoanInterestRate},
		{"RISK_COLD_START_CEILING", &c.RiskColdStartCeiling},
		{"RISK_LOW_CEILING", &c.RiskLowCeiling},
		{"RISK_MEDIUM_CEILING", &c.RiskMediumCeiling},
		{"RISK_CONTRIBUTION_MULTIPLIER", &c.RiskContributionMultiplier},
	}
	for _, d := range decimals {
		val, err := decimal.NewFromString(strings.TrimSpace(v.GetString(d.key)))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", d.key)
		}
		*d.dst = val
	}
	return c, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.LoanTermDays <= 0 {
		return errors.New("LOAN_TERM_DAYS must be positive")
	}
	if c.LoanMaxPerYear <= 0 {
		return errors.New("LOAN_MAX_PER_YEAR must be positive")
	}
	if c.LoanInterestRate.IsNegative() {
		return errors.New("LOAN_INTEREST_RATE must not be negative")
	}
	if c.OverdueCheckInterval <= 0 || c.OverdueRetryInterval <= 0 {
		return errors.New("OVERDUE_CHECK_INTERVAL and OVERDUE_RETRY_INTERVAL must be positive")
	}
	if c.NotificationDedupeWindow < 0 {
		return errors.New("NOTIFICATION_DEDUPE_WINDOW must not be negative")
	}
	for name, d := range map[string]decimal.Decimal{
		"RISK_COLD_START_CEILING":      c.RiskColdStartCeiling,
		"RISK_LOW_CEILING":             c.RiskLowCeiling,
		"RISK_MEDIUM_CEILING":          c.RiskMediumCeiling,
		"RISK_CONTRIBUTION_MULTIPLIER": c.RiskContributionMultiplier,
	} {
		if d.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

func (c *Config) LoanTerm() time.Duration { return time.Duration(c.LoanTermDays) * 24 * time.Hour }

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
