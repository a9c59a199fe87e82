package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"recall-server/internal/config"
	"recall-server/internal/jwt"
	"recall-server/internal/mux"
	"recall-server/pkg/db"
	"recall-server/pkg/model"
	"recall-server/pkg/room"
	"recall-server/pkg/statesink"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const shutdownTimeout = time.Second * 10

// finished matches are kept this long so clients can read the result
const finishedMatchTTL = 10 * time.Minute

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", "", "the listen address, overrides the configuration")

func main() {
	flag.Parse()

	cfg := config.Instance()
	setupLogger(cfg)

	if *addr != "" {
		cfg.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := setupSink(ctx, cfg)
	defer func() {
		if err := sink.Close(); err != nil {
			logrus.WithError(err).Error("could not close state sink")
		}
	}()

	opts := room.Options{
		DeckConfigPath:    cfg.DeckConfigPath,
		AIConfigPath:      cfg.AIConfigPath,
		Round:             cfg.Timings.RoundOptions(),
		DefaultDifficulty: cfg.DefaultDifficulty,
		IncludeJokers:     cfg.IncludeJokers,
		Sink:              sink,
	}

	if cfg.PGDSN != "" {
		dbh, err := db.Open(ctx, cfg.PGDSN)
		if err != nil {
			logrus.WithError(err).Fatal("could not open database")
		}
		defer dbh.Close()

		// run the db migrations
		if err := db.Migrate(logrus.StandardLogger(), dbh, cfg.MigrationsPath); err != nil {
			logrus.WithError(err).Fatal("could not run migrations")
		}

		opts.Recorder = model.NewMatchRecorder(dbh)
	} else {
		logrus.Warn("no database configured, finished matches will not be recorded")
	}

	engine, err := room.NewEngine(logrus.StandardLogger(), opts)
	if err != nil {
		logrus.WithError(err).Fatal("could not create engine")
	}

	secret := cfg.JWT.Secret
	if secret == "" {
		secret = uuid.New().String()
		logrus.Warn("no jwt secret configured, seat tokens will not survive a restart")
	}

	signer, err := jwt.NewSigner(secret, cfg.JWT.TTL)
	if err != nil {
		logrus.WithError(err).Fatal("could not create jwt signer")
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      loggingHandler(cfg, c.Handler(mux.NewMux(Version, engine, signer))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go disposeFinished(ctx, engine)

	go func() {
		<-ctx.Done()
		logrus.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("could not shut down server")
		}
	}()

	logrus.WithField("addr", srv.Addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Error("server failed")
	}

	engine.Shutdown()
}

// setupSink returns the in-memory sink, fanned out to Redis and NATS when they are configured
func setupSink(ctx context.Context, cfg config.Config) statesink.Sink {
	sinks := statesink.Fanout{statesink.NewMemory()}

	if cfg.Redis.Addr != "" {
		r, err := statesink.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			logrus.WithError(err).Fatal("could not connect to redis")
		}

		logrus.WithField("addr", cfg.Redis.Addr).Info("publishing match state to redis")
		sinks = append(sinks, r)
	}

	if cfg.NATS.URL != "" {
		n, err := statesink.NewNATS(cfg.NATS.URL)
		if err != nil {
			logrus.WithError(err).Fatal("could not connect to nats")
		}

		logrus.WithField("url", cfg.NATS.URL).Info("publishing match state to nats")
		sinks = append(sinks, n)
	}

	if len(sinks) == 1 {
		return sinks[0]
	}

	return sinks
}

func disposeFinished(ctx context.Context, engine *room.Engine) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := engine.DisposeFinished(now.Add(-finishedMatchTTL)); n > 0 {
				logrus.WithField("matches", n).Info("disposed finished matches")
			}
		}
	}
}

func loggingHandler(cfg config.Config, next http.Handler) http.Handler {
	if cfg.Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger(cfg config.Config) {
	if lvl := cfg.Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(cfg.Log.Format) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
