package app

import (
	"context"
	"crypto/sha256"
	"crypto/x509"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shandysiswandi/seedauth/internal/pkg/clock"
	"github.com/shandysiswandi/seedauth/internal/pkg/config"
	"github.com/shandysiswandi/seedauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/seedauth/internal/pkg/hash"
	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/messaging"
	"github.com/shandysiswandi/seedauth/internal/pkg/otp"
	"github.com/shandysiswandi/seedauth/internal/pkg/router"
	"github.com/shandysiswandi/seedauth/internal/pkg/rsacrypto"
	"github.com/shandysiswandi/seedauth/internal/pkg/uid"
	"github.com/shandysiswandi/seedauth/internal/pkg/validator"
)

// fatal logs and terminates; init steps have no caller to return to.
func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	if os.Getenv("LOCAL") == "true" {
		return "./config/config.yaml"
	}
	return "/config/config.yaml"
}

func (a *App) initConfig() {
	path := configPath()
	cfg, err := config.NewViper(path)
	if err != nil {
		fatal("failed to load config", "path", path, "error", err)
	}

	// Codes and the code log are always UTC.
	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", "UTC")

	a.config = cfg
	a.onClose("config", func(context.Context) error { return cfg.Close() })
}

func (a *App) initInstrument() {
	cfg := a.config
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          cfg.GetBool("instrument.enabled"),
		ServiceName:      cfg.GetString("instrument.service_name"),
		ServiceVersion:   cfg.GetString("instrument.service_version"),
		Environment:      cfg.GetString("instrument.env"),
		OTLPEndpoint:     cfg.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       cfg.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: cfg.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  cfg.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         cfg.GetString("instrument.log_level"),
		MaskFields:       cfg.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		fatal("failed to init instrumentation", "error", err)
	}

	a.ins = ins
	// Shutdown flushes exporters, so it gets a context that Stop cannot have cancelled.
	a.onClose("instrument", func(ctx context.Context) error {
		return ins.Shutdown(context.WithoutCancel(ctx))
	})
}

func (a *App) initLibraries() {
	v, err := validator.NewV10Validator()
	if err != nil {
		fatal("failed to init validator", "error", err)
	}

	a.validator = v
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.totp = otp.NewTOTP(a.config.GetUint("twofa.totp.window"))
}

func (a *App) initPrivateKey() {
	key, err := rsacrypto.ParsePrivateKey(a.config.GetString("twofa.private_key"))
	if err != nil {
		fatal("failed to load rsa private key", "error", err)
	}
	a.privateKey = key

	// Replicas share the private key, so without a configured key they still
	// agree on the fingerprint key derived from it.
	fpKey := a.config.GetBinary("twofa.fingerprint_key")
	if len(fpKey) == 0 {
		sum := sha256.Sum256(x509.MarshalPKCS1PublicKey(&key.PublicKey))
		fpKey = sum[:]
	}
	a.hmac = hash.NewHMACSHA256(fpKey)
}

// initCache connects to Redis only when redis.url is set; the file seed
// driver runs without it.
func (a *App) initCache() {
	url := strings.TrimSpace(a.config.GetString("redis.url"))
	if url == "" {
		return
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		fatal("invalid redis url", "error", err)
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		fatal("failed to reach redis", "addr", opt.Addr, "error", err)
	}

	a.cacheConn = rdb
	a.onClose("redis", func(context.Context) error { return rdb.Close() })
}

func natsOptions(cfg config.Config) []nats.Option {
	return []nats.Option{
		nats.Name(cfg.GetString("messaging.nats.name")),
		nats.Timeout(cfg.GetSecond("messaging.nats.timeout_seconds")),
		nats.MaxReconnects(cfg.GetInt("messaging.nats.max_reconnects")),
		nats.ReconnectWait(cfg.GetSecond("messaging.nats.reconnect_wait_seconds")),
		nats.PingInterval(cfg.GetSecond("messaging.nats.ping_interval_seconds")),
		nats.MaxPingsOutstanding(cfg.GetInt("messaging.nats.max_pings_outstanding")),
		nats.RetryOnFailedConnect(cfg.GetBool("messaging.nats.retry_on_failed_connect")),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NATS: messaging.NATSConfig{
			URL:     a.config.GetString("messaging.nats.url"),
			Options: natsOptions(a.config),
		},
	})
	if err != nil {
		fatal("failed to init messaging", "driver", driver, "error", err)
	}

	a.messaging = client
	a.onClose("messaging", func(context.Context) error { return client.Close() })
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	handler := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{router.HeaderCorrelationID},
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           handler,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}
