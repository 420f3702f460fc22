package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/court-docket-api/api"
	"github.com/linesmerrill/court-docket-api/api/handlers"
	"github.com/linesmerrill/court-docket-api/api/scheduler"
	"github.com/linesmerrill/court-docket-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()
	if a.Config.RequestTimeout > 0 {
		api.QueryTimeout = a.Config.RequestTimeout
	}

	if err := a.Initialize(); err != nil { //initialize database and router
		zap.S().Fatalw("failed to initialize", "error", err)
	}

	sched := scheduler.NewScheduler(a.Cases, a.Metrics, a.Config.SweepSchedule)
	if err := sched.Start(); err != nil {
		zap.S().Fatalw("failed to start scheduler", "error", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%v", a.Config.Port),
		Handler: a.Router,
	}
	go func() {
		zap.S().Infow("court-docket-api is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
			"backend", a.Config.StoreBackend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalw("server stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	sched.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		zap.S().Errorw("failed to shut down server", "error", err)
	}
	if err := a.Close(ctx); err != nil {
		zap.S().Errorw("failed to disconnect from database", "error", err)
	}
	_ = zap.L().Sync()
}
