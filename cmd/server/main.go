package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	apphandler "homestay/internal/application/handler"
	appmetrics "homestay/internal/application/metrics"
	"homestay/internal/application/service"
	"homestay/internal/application/store"
	jwttoken "homestay/internal/jwt_token"
	"homestay/internal/notify"
	"homestay/internal/numbering"
	"homestay/internal/platform/config"
	"homestay/internal/platform/httpserver"
	"homestay/internal/platform/logger"
	platformmetrics "homestay/internal/platform/metrics"
	"homestay/internal/platform/postgres"
	platformredis "homestay/internal/platform/redis"
	"homestay/internal/policy"
	"homestay/pkg/platform/httputil"
)

// main wires the stores, the workflow service and the HTTP surface, then
// runs the server and the outbox relay until SIGINT or SIGTERM.
func main() {
	envFile := flag.String("env-file", ".env", "optional dotenv file read before the environment")
	flag.Parse()

	if err := run(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "homestay: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if cfg.UsesDevSigningKey() {
		log.Warn("JWT_SIGNING_KEY not set, using the development signing key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.close()

	pol, err := policy.Load(cfg.Policy.File)
	if err != nil {
		return err
	}

	seq, err := selectSequencer(cfg, infra)
	if err != nil {
		return err
	}

	var tx service.StoreTx
	if infra.db != nil {
		tx = service.NewPostgresTx(infra.db, store.NewPostgres(infra.db))
	} else {
		log.Warn("DATABASE_URL not set, records are kept in memory")
		tx = service.NewInMemoryTx(store.NewInMemory())
	}

	svc := service.New(tx, numbering.New(seq), policy.NewHolder(pol),
		service.WithLogger(log),
		service.WithMetrics(appmetrics.New()),
		service.WithNotifier(notify.NewLogNotifier(log)),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	handlerOpts := []apphandler.Option{
		apphandler.WithGatewayToken(cfg.Auth.GatewayToken),
		apphandler.WithRequestTimeout(cfg.Server.RequestTimeout),
		apphandler.WithTrustProxy(cfg.Server.TrustProxy),
	}
	if infra.redis != nil {
		handlerOpts = append(handlerOpts, apphandler.WithRevocationChecker(jwttoken.NewRedisRevocationList(infra.redis.Client)))
	}
	if cfg.Auth.GatewayToken == "" {
		log.Warn("PAYMENT_GATEWAY_TOKEN not set, payment callbacks are disabled")
	}

	router := chi.NewRouter()
	router.Get("/healthz", infra.health)
	router.Handle("/metrics", promhttp.Handler())
	apphandler.New(svc, log, platformmetrics.New(), jwttoken.NewJWTServiceAdapter(jwtService), handlerOpts...).
		Register(router)

	var relay *notify.OutboxRelay
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		publisher, err := notify.NewKafkaPublisher(brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer publisher.Close()
		if err := publisher.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			log.Warn("ensure outbox topic", "error", err)
		}
		relay = notify.NewOutboxRelay(infra.db, publisher,
			notify.WithRelayLogger(log),
			notify.WithBatchSize(cfg.Kafka.RelayBatchSize),
			notify.WithPollInterval(cfg.Kafka.RelayInterval),
		)
	}

	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting homestay", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if relay != nil {
		g.Go(func() error {
			log.Info("outbox relay started", "topic", cfg.Kafka.Topic)
			return relay.Run(gctx)
		})
	}

	return g.Wait()
}

type infrastructure struct {
	db     *sql.DB
	redis  *platformredis.Client
	logger *slog.Logger
}

func openInfra(ctx context.Context, cfg *config.Config, log *slog.Logger) (*infrastructure, error) {
	infra := &infrastructure{logger: log}
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, postgres.Config{
			DSN:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		infra.db = db
		if cfg.Database.RunMigrations {
			if err := postgres.Migrate(db); err != nil {
				infra.close()
				return nil, err
			}
		}
	}
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		infra.close()
		return nil, err
	}
	infra.redis = client
	return infra, nil
}

func (i *infrastructure) close() {
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			i.logger.Error("close redis", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			i.logger.Error("close database", "error", err)
		}
	}
}

func (i *infrastructure) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	if i.db != nil {
		if err := i.db.PingContext(ctx); err != nil {
			status["status"], status["database"] = "degraded", err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	if i.redis != nil {
		if err := i.redis.Health(ctx); err != nil {
			status["status"], status["redis"] = "degraded", err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	httputil.WriteJSON(w, code, status)
}

// selectSequencer honours HOMESTAY_SEQUENCE_BACKEND, otherwise prefers
// Postgres, then Redis, then the process-local counter.
func selectSequencer(cfg *config.Config, infra *infrastructure) (numbering.Sequencer, error) {
	backend := cfg.Policy.SequenceBackend
	if backend == "" {
		switch {
		case infra.db != nil:
			backend = "postgres"
		case infra.redis != nil:
			backend = "redis"
		default:
			backend = "memory"
		}
	}
	switch backend {
	case "postgres":
		return numbering.NewPostgresSequencer(infra.db), nil
	case "redis":
		return numbering.NewRedisSequencer(infra.redis.Client), nil
	case "memory":
		return numbering.NewMemorySequencer(), nil
	}
	return nil, fmt.Errorf("unknown sequence backend %q", backend)
}
