package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"community-lending/internal/adapter/cache"
	httpadp "community-lending/internal/adapter/http"
	"community-lending/internal/adapter/kafka"
	"community-lending/internal/adapter/repository/mysql"
	"community-lending/internal/config"
	rediscache "community-lending/internal/infrastructure/cache"
	"community-lending/internal/infrastructure/db"
	"community-lending/internal/infrastructure/logging"
	"community-lending/internal/infrastructure/metrics"
	"community-lending/internal/usecase/contribution"
	"community-lending/internal/usecase/loan"
	"community-lending/internal/usecase/notification"
	"community-lending/internal/usecase/overdue"
	"community-lending/internal/usecase/risk"
)

// app holds every wired component of the process.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	db      *gorm.DB
	rdb     *redis.Client
	reg     *prometheus.Registry
	metrics *metrics.Metrics

	publisher *kafka.NotificationPublisher

	loans         *loan.Usecase
	risk          *risk.Usecase
	contributions *contribution.Usecase
	notifier      *notification.Fanout
	monitor       *overdue.Monitor
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), errors.Wrap(err, "invalid config")
	}
	return cfg, logging.New(cfg.AppEnv, cfg.LogLevel), nil
}

func openDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	return db.OpenGorm(cfg.MySQLDSN(),
		db.WithLogLevel(db.ParseLogLevel(cfg.GormLogMode)),
		db.WithLogger(log),
		db.WithPool(cfg.MySQLMaxOpen, cfg.MySQLMaxIdle))
}

func newApp() (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	gdb, err := openDB(cfg, log)
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	rdb, err := rediscache.OpenRedis(cfg.RedisAddr, cfg.RedisDB, rediscache.WithPassword(cfg.RedisPassword))
	if err != nil {
		return nil, errors.Wrap(err, "open redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	loans := mysql.NewLoanRepository(gdb)
	payments := mysql.NewPaymentRepository(gdb)
	members := mysql.NewMemberRepository(gdb)
	contributions := mysql.NewContributionRepository(gdb)

	fan := notification.NewFanout(members, mysql.NewNotificationRepository(gdb), log, m).
		WithDedupe(cache.NewDedupeStore(rdb), cfg.NotificationDedupeWindow)

	a := &app{cfg: cfg, log: log, db: gdb, rdb: rdb, reg: reg, metrics: m, notifier: fan}
	if len(cfg.KafkaBrokers) > 0 {
		a.publisher = kafka.NewNotificationPublisher(kafka.NewNotificationWriter(cfg.KafkaBrokers, cfg.KafkaNotificationTopic))
		fan.WithPublisher(a.publisher)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaNotificationTopic).Msg("notification publisher enabled")
	}

	a.risk = risk.NewUsecase(loans, contributions, members, risk.Policy{
		ColdStartCeiling:       cfg.RiskColdStartCeiling,
		LowCeiling:             cfg.RiskLowCeiling,
		MediumCeiling:          cfg.RiskMediumCeiling,
		ContributionMultiplier: cfg.RiskContributionMultiplier,
	})
	a.loans = loan.NewUsecase(loan.Deps{
		Loans:         loans,
		Payments:      payments,
		Decisions:     mysql.NewDecisionRepository(gdb),
		Members:       members,
		Contributions: contributions,
		UoW:           mysql.NewGormUoW(gdb),
		Risk:          a.risk,
		Notifier:      fan,
		Log:           log,
		Metrics:       m,
	}, loan.Policy{
		Term:            cfg.LoanTerm(),
		InterestRate:    cfg.LoanInterestRate,
		MaxLoansPerYear: cfg.LoanMaxPerYear,
	})
	a.contributions = contribution.NewUsecase(
		mysql.NewContributionLimitRepository(gdb), contributions, mysql.NewRewardRepository(gdb), members, log, m).
		WithUnitOfWork(mysql.NewGormUoW(gdb))
	a.monitor = overdue.NewMonitor(loans, fan, log, m, cfg.OverdueCheckInterval, cfg.OverdueRetryInterval)
	return a, nil
}

func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close notification publisher")
		}
	}
	if err := a.rdb.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close redis")
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (a *app) healthChecks() []httpadp.Check {
	return []httpadp.Check{
		{Name: "mysql", Ping: func(ctx context.Context) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
		{Name: "redis", Ping: func(ctx context.Context) error { return a.rdb.Ping(ctx).Err() }},
	}
}
