// Command imagefeed serves the image gallery, its REST API and the live
// event stream.
//
//	imagefeed --config cmd/imagefeed/config.yml
//	imagefeed --issue-token ci-bot
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"

	"github.com/kbukum/imagefeed/api"
	"github.com/kbukum/imagefeed/auth"
	"github.com/kbukum/imagefeed/auth/jwt"
	"github.com/kbukum/imagefeed/bootstrap"
	"github.com/kbukum/imagefeed/config"
	"github.com/kbukum/imagefeed/database"
	"github.com/kbukum/imagefeed/gallery"
	"github.com/kbukum/imagefeed/observability"
	"github.com/kbukum/imagefeed/redis"
	"github.com/kbukum/imagefeed/server"
	"github.com/kbukum/imagefeed/server/middleware"
	"github.com/kbukum/imagefeed/sse"
	"github.com/kbukum/imagefeed/stream"
)

const serviceName = "imagefeed"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to config.yml")
	envFile := fs.String("env-file", "", "path to a .env file")
	subject := fs.String("issue-token", "", "print a submit token for `subject` and exit")
	fs.Int("server.port", 0, "listen port")
	fs.String("logging.level", "", "log level (debug, info, warn, error)")
	fs.Bool("database.enabled", false, "persist images in the database")
	fs.Bool("redis.enabled", false, "fan events out through redis")
	fs.Bool("auth.enabled", false, "require a bearer token to submit images")
	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	opts := []config.LoaderOption{config.WithFlags(fs)}
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return err
	}

	if *subject != "" {
		cfg.ApplyDefaults()
		return issueToken(&cfg, *subject, stdout)
	}

	app, err := build(&cfg)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

// issueToken prints a token allowed to submit images.
func issueToken(cfg *Config, subject string, w io.Writer) error {
	svc, err := jwt.NewService(&cfg.Auth.JWT, newClaims)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	token, err := svc.GenerateAccess(&auth.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: subject},
		Scope:            auth.ScopeSubmit,
	})
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

func newClaims() *auth.Claims { return &auth.Claims{} }

// build wires every component. Components start in registration order:
// telemetry, storage, redis, the hub, the redis relay, then the HTTP server.
func build(cfg *Config, opts ...bootstrap.Option) (*bootstrap.App[*Config], error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}
	log := app.Logger

	obs := observability.NewComponent(cfg.Observability, observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})
	if err := app.RegisterComponent(obs); err != nil {
		return nil, err
	}
	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	var store gallery.Store = gallery.NewMemoryStore()
	if cfg.Database.Enabled {
		db := database.NewComponent(cfg.Database, log).
			WithMigrations(gallery.Migrations()).
			WithAutoMigrate(&gallery.ImageRecord{})
		if err := app.RegisterComponent(db); err != nil {
			return nil, err
		}
		store = gallery.NewLazyGormStore(db.DB)
	}

	var rc *redis.Component
	if cfg.Redis.Enabled {
		rc = redis.NewComponent(cfg.Redis, log)
		if err := app.RegisterComponent(rc); err != nil {
			return nil, err
		}
	}

	hubComponent := sse.NewComponent(api.PathListen,
		sse.WithLogger(log.WithComponent("sse")),
		sse.WithHistorySize(cfg.Stream.History),
		sse.WithBufferSize(cfg.Stream.Buffer),
		sse.WithRetry(cfg.Stream.Retry),
		sse.WithKeepAlive(cfg.Stream.KeepAlive),
		sse.WithMetrics(metrics),
	)
	if err := app.RegisterComponent(hubComponent); err != nil {
		return nil, err
	}
	hub := hubComponent.Hub()

	var publisher gallery.Publisher = stream.NewHubPublisher(hub)
	if rc != nil {
		bridge := stream.NewRedisBridge(rc.Client, hub, log)
		if err := app.RegisterComponent(bridge); err != nil {
			return nil, err
		}
		publisher = bridge
	}

	svc := gallery.NewService(store, publisher,
		gallery.WithLogger(log.WithComponent("gallery")),
		gallery.WithMetrics(metrics),
	)

	guard, err := submitGuard(&cfg.Auth)
	if err != nil {
		return nil, err
	}
	log.Info("Image submission auth", map[string]interface{}{"auth": cfg.Auth.Describe()})

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, app.Components.HealthAll)
	api.NewHandlers(svc, hub, log).Register(srv.GinEngine(), submitLimiter(&cfg.Submit), guard)
	// Close open streams before the server waits for active connections.
	srv.OnShutdown(hub.Stop)
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return nil, err
	}

	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
		return svc.Seed(ctx, a.Cfg.Seed)
	})
	app.OnReady(func(context.Context) error {
		log.Info("Serving image feed", map[string]interface{}{
			"addr":   srv.Addr(),
			"stream": api.PathListen,
		})
		return nil
	})
	return app, nil
}

// submitLimiter returns nil when the limit is disabled.
func submitLimiter(cfg *SubmitConfig) gin.HandlerFunc {
	if cfg.RateLimit < 0 {
		return nil
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		Requests: cfg.RateLimit,
		Window:   cfg.RateWindow,
	})
}

// submitGuard returns nil when auth is disabled.
func submitGuard(cfg *auth.Config) (gin.HandlerFunc, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	svc, err := jwt.NewService(&cfg.JWT, newClaims)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	return middleware.Auth(middleware.AuthConfig{
		Validator: auth.NewValidator(svc.ValidatorFunc()),
		Scope:     auth.ScopeSubmit,
	}), nil
}
