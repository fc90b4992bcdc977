// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/communityhub/internal/app/console"
	"github.com/dalemusser/communityhub/internal/app/ingest"
	"github.com/dalemusser/communityhub/internal/app/mutation"
	"github.com/dalemusser/communityhub/internal/app/store/audit"
	"github.com/dalemusser/communityhub/internal/app/system/auditlog"
	"github.com/dalemusser/communityhub/internal/app/system/communityapi"
	"github.com/dalemusser/communityhub/internal/app/system/events"
	"github.com/dalemusser/communityhub/internal/app/system/tasks"
	"github.com/dalemusser/communityhub/internal/app/system/timeouts"
	"github.com/dalemusser/communityhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// services are the long-lived objects Startup builds and BuildHandler and
// Shutdown use. WAFFLE passes only config and DBDeps between hooks, so they
// are kept here.
type services struct {
	console   *console.Console
	audit     *auditlog.Logger
	auditDB   *audit.Store // nil without mongo
	publisher events.Publisher
	scheduler *tasks.Scheduler
	probe     *workers.UpstreamProbe
}

var (
	svcMu sync.Mutex
	svc   *services
)

func current() (*services, error) {
	svcMu.Lock()
	defer svcMu.Unlock()
	if svc == nil {
		return nil, errors.New("bootstrap: Startup has not run")
	}
	return svc, nil
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// It builds the console, loads users, posts and comments once (a failure
// there is logged, not fatal: the dashboard shows the error and the
// scheduler retries), then starts the refresh scheduler and the upstream
// probe.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Remote: appCfg.APITimeout})
	if n := timeouts.ConfigureFromEnv("COMMUNITYHUB"); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	api, err := communityapi.New(appCfg.APIBaseURL, nil, logger.Named("communityapi"))
	if err != nil {
		return err
	}
	norm, err := newNormalizer(appCfg, logger)
	if err != nil {
		return err
	}

	s := &services{publisher: events.Nop{}}

	var recorder auditlog.Recorder
	if deps.MongoDatabase != nil {
		s.auditDB = audit.New(deps.MongoDatabase)
		recorder = s.auditDB
	}
	s.audit = auditlog.New(recorder, logger, auditlog.Config{
		Auth:       appCfg.AuditLogAuth,
		Moderation: appCfg.AuditLogModeration,
	})

	if brokers := events.ParseBrokers(appCfg.KafkaBrokers); len(brokers) > 0 {
		pub, err := events.NewKafkaPublisher(events.KafkaConfig{Brokers: brokers, Topic: appCfg.KafkaTopic}, logger.Named("events"))
		if err != nil {
			return err
		}
		s.publisher = pub
		logger.Info("moderation events enabled", zap.Strings("brokers", brokers), zap.String("topic", appCfg.KafkaTopic))
	}

	s.console = console.New(console.Config{
		API:       api,
		Normalize: norm,
		Timeout:   timeouts.Remote,
		Observers: []mutation.Observer{s.audit, events.Observer(s.publisher, logger)},
		Log:       logger.Named("console"),
	})

	rctx, cancel := timeouts.WithTimeout(ctx, timeouts.Refresh(), logger, "initial refresh")
	if _, err := s.console.RefreshAll(rctx); err != nil {
		logger.Warn("initial refresh incomplete", zap.Error(err))
	}
	cancel()

	s.scheduler = tasks.NewScheduler(logger.Named("tasks"))
	refresh := tasks.RefreshFunc(func(ctx context.Context) error {
		_, err := s.console.RefreshAll(ctx)
		return err
	})
	if err := s.scheduler.Add(tasks.RefreshJob(refresh, appCfg.RefreshSchedule, timeouts.Refresh(), logger)); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	s.scheduler.Start()

	interval := appCfg.ProbeInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	s.probe = workers.NewUpstreamProbe(api, logger.Named("probe"), interval, timeouts.Ping())
	s.probe.Start()

	svcMu.Lock()
	svc = s
	svcMu.Unlock()
	return nil
}

func newNormalizer(appCfg AppConfig, logger *zap.Logger) (*ingest.Normalizer, error) {
	policy, err := ingest.ParseBatchPolicy(appCfg.MalformedPolicy)
	if err != nil {
		return nil, err
	}
	domain := appCfg.EmailDomain
	if domain == "" {
		domain = "attijari.com"
	}
	fallback := ingest.Deterministic(domain)
	if appCfg.FallbackPolicy == "random" {
		fallback = ingest.Random(domain, appCfg.FallbackSeed, nil)
	}
	return ingest.New(ingest.Options{Policy: policy, Fallback: fallback, Log: logger.Named("ingest")}), nil
}
