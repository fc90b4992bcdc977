// Command fakeapi serves a generated community API for local development.
//
//	fakeapi --addr :8081 --seed 42 --users 25 --posts 40 --comments 120
//
// Point communityhub at it with COMMUNITYHUB_API_BASE_URL=http://localhost:8081/api.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dalemusser/communityhub/internal/app/system/fakeapi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	addr := pflag.String("addr", ":8081", "listen address")
	seed := pflag.Int64("seed", 0, "data seed (0 picks a random one)")
	users := pflag.Int("users", 25, "number of users")
	posts := pflag.Int("posts", 40, "number of posts")
	comments := pflag.Int("comments", 120, "number of comments")
	failReads := pflag.Int("fail-reads", 0, "answer every list request with this status")
	failWrites := pflag.Int("fail-writes", 0, "answer every write with this status")
	delay := pflag.Duration("write-delay", 0, "delay before answering writes")
	pflag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	fake := fakeapi.New(fakeapi.Options{
		Seed:     *seed,
		Users:    *users,
		Posts:    *posts,
		Comments: *comments,
		Log:      logger,
	})
	if *failReads != 0 {
		fake.FailReads(*failReads)
	}
	if *failWrites != 0 {
		fake.FailWrites(*failWrites)
	}
	if *delay > 0 {
		fake.DelayWrites(*delay)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Mount("/", fake.Handler())

	srv := &http.Server{Addr: *addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("fake community API listening", zap.String("addr", *addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}
