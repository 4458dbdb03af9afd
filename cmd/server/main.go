package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kicklab/challenge-api/internal/auth"
	"github.com/kicklab/challenge-api/internal/cache"
	"github.com/kicklab/challenge-api/internal/config"
	"github.com/kicklab/challenge-api/internal/domain"
	httpserver "github.com/kicklab/challenge-api/internal/http"
	"github.com/kicklab/challenge-api/internal/mediastore"
	"github.com/kicklab/challenge-api/internal/metrics"
	"github.com/kicklab/challenge-api/internal/rating"
	"github.com/kicklab/challenge-api/internal/repository"
	"github.com/kicklab/challenge-api/internal/store"
	"github.com/kicklab/challenge-api/internal/watch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar()

	m := metrics.New()

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		logger.Fatalw("connect database", "error", err)
	}
	defer st.Close()

	txRunner := store.NewTxRunner(st.Pool(), cfg.TxMaxAttempts, logger, m.TxRetries.Inc)
	repo := repository.New(st, txRunner)
	ledger := rating.NewLedger(repo.Ratings, m, logger)
	verifier := auth.NewVerifier(cfg.JWTSecret)

	media, err := mediastore.NewHTTPClient(cfg.MediaStoreURL, cfg.MediaStoreAPIKey,
		time.Duration(cfg.MediaStoreTimeoutSecs)*time.Second, logger)
	if err != nil {
		logger.Fatalw("init media store client", "error", err)
	}

	var kv cache.KV
	redisKV := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := redisKV.Ping(ctx); err != nil {
		logger.Warnw("redis unreachable, using in-process cache", "addr", cfg.RedisAddr, "error", err)
		kv = cache.NewMemory()
	} else {
		defer func() { _ = redisKV.Close() }()
		kv = redisKV
	}

	userLookup := func(ctx context.Context, id string) (domain.User, error) {
		return repo.Users.Get(ctx, id)
	}
	users := cache.NewUserInfo(kv, userLookup, time.Hour)
	board := cache.NewLeaderboard(kv, time.Duration(cfg.LeaderboardTTLSecs)*time.Second)

	refresher := watch.NewRefresher(repo.Challenges, repo.Submissions, board,
		cfg.LeaderboardSize, time.Duration(cfg.SnapshotIntervalSecs)*time.Second,
		logger, m.SnapshotsEmitted.Inc)
	go refresher.Run(ctx)

	server := httpserver.New(cfg, st, repo, ledger, verifier, media, users, board, m, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.Errorw("server error", "error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorw("graceful shutdown error", "error", err)
	}
}
