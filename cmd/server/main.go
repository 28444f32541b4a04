// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/imposter/internal/auth"
	"github.com/jason-s-yu/imposter/internal/cache"
	"github.com/jason-s-yu/imposter/internal/config"
	"github.com/jason-s-yu/imposter/internal/database"
	"github.com/jason-s-yu/imposter/internal/game"
	"github.com/jason-s-yu/imposter/internal/handlers"
	"github.com/jason-s-yu/imposter/internal/lobby"
	"github.com/jason-s-yu/imposter/internal/session"
	"github.com/jason-s-yu/imposter/internal/words"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	logrus.SetLevel(level)

	if cfg.JWTPrivateKeyPath != "" && cfg.JWTPublicKeyPath != "" {
		err = auth.InitFromPath(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.TokenExpire)
	} else {
		logger.Warn("no JWT key files configured, tokens will not survive a restart")
		err = auth.Init(cfg.TokenExpire)
	}
	if err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		users     handlers.IdentityService
		stats     game.StatsRecorder
		recorder  lobby.Recorder
		snapshots lobby.SnapshotCache
	)
	if cfg.Postgres.Disabled {
		logger.Warn("database disabled, accounts are kept in memory")
		mem := auth.NewMemoryStore()
		users, stats = mem, mem
	} else {
		if err := database.ConnectDB(cfg.Postgres); err != nil {
			logger.Fatal(err)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			logger.Fatal(err)
		}
		db := database.Store{}
		users, stats, recorder = db, db, db
	}

	if cfg.Redis.Disabled {
		logger.Warn("redis disabled, lobby history and snapshots are not published")
	} else {
		if err := cache.ConnectRedis(cfg.Redis.Addr, cfg.Redis.DB); err != nil {
			logger.Fatal(err)
		}
		defer cache.Rdb.Close()
		cache.QueueName = cfg.HistorianQueue
		snapshots = cache.NewSnapshotCache(cache.Rdb, cfg.SnapshotTTL)
	}

	wordList := words.Default
	if cfg.WordsFile != "" {
		if wordList, err = words.Load(cfg.WordsFile); err != nil {
			logger.Fatal(err)
		}
	}
	logger.Infof("Loaded %d words", len(wordList))

	var gs *handlers.GameServer
	store := lobby.NewStore(lobby.StoreConfig{
		GameOptions: game.Options{
			Words:        wordList,
			Stats:        stats,
			TickInterval: cfg.TickInterval,
			SpeakerPause: cfg.SpeakerPause,
		},
		Recorder:  recorder,
		Snapshots: snapshots,
		OnRemove:  func(l *lobby.Lobby) { gs.OnLobbyRemoved(l) },
	})
	gs = handlers.NewGameServer(store, session.NewRegistry(), users, logger)
	gs.OriginPatterns = cfg.AllowedOrigins

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           gs.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		store.RunJanitor(gctx, cfg.JanitorInterval, cfg.LobbyAbandonAfter)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server exited: %v", err)
	}
}
