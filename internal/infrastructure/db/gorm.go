package db

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type options struct {
	logLevel logger.LogLevel
	log      zerolog.Logger
	maxOpen  int
	maxIdle  int
}

type Option func(*options)

func defaultOptions() options {
	return options{logLevel: logger.Warn, log: zerolog.Nop(), maxOpen: 30, maxIdle: 10}
}

// WithLogLevel sets gorm's own SQL logger level.
func WithLogLevel(l logger.LogLevel) Option { return func(o *options) { o.logLevel = l } }

// WithLogger sends connection events and gorm's SQL log to l.
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.log = l } }

// WithPool sizes the connection pool. Zero or negative values keep the
// defaults of 30 open and 10 idle; idle never exceeds open.
func WithPool(maxOpen, maxIdle int) Option {
	return func(o *options) {
		if maxOpen > 0 {
			o.maxOpen = maxOpen
		}
		if maxIdle > 0 {
			o.maxIdle = maxIdle
		}
		if o.maxIdle > o.maxOpen {
			o.maxIdle = o.maxOpen
		}
	}
}

// gormWriter adapts zerolog to gorm's logger.Writer.
type gormWriter struct{ log zerolog.Logger }

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Info().Msgf(format, args...)
}

// ParseLogLevel maps silent/error/warn/info onto gorm levels; anything else is warn.
func ParseLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

func OpenGorm(dsn string, opts ...Option) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), opts...)
}

// OpenGormWithDialector opens and pings the pool. Driver errors such as
// duplicate keys are translated into gorm's sentinel errors.
func OpenGormWithDialector(dial gorm.Dialector, opts ...Option) (*gorm.DB, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	cfg := &gorm.Config{
		Logger: logger.New(gormWriter{o.log.With().Str("component", "gorm").Logger()}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  o.logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "gorm open")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "gorm sql handle")
	}
	sqlDB.SetMaxOpenConns(o.maxOpen)
	sqlDB.SetMaxIdleConns(o.maxIdle)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "gorm ping")
	}
	o.log.Info().Str("dialect", dial.Name()).Msg("gorm: connected")
	return db, nil
}
