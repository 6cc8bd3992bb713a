// Command weighsvc runs the weigh engine's HTTP server: weight ingest,
// batch container-tare ingest, and the read endpoints.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"weighstation/internal/store"
	"weighstation/internal/weigh"
	"weighstation/internal/weigh/weighpg"
	"weighstation/pkg/config"
)

func main() {
	log := logrus.New()

	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	pool, err := store.Open(cfg.DSN())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := store.WaitReady(ctx, pool, log, 30, 2*time.Second); err != nil {
		log.Fatalf("database not reachable: %v", err)
	}
	if err := store.Bootstrap(ctx, pool, weighpg.SchemaSQL); err != nil {
		log.Fatalf("bootstrap schema: %v", err)
	}

	svc := weigh.NewService(weighpg.New(pool))
	controller := weigh.NewController(svc, log, cfg.Weigh.BatchDir)
	router := weigh.NewRouter(controller, log)

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		log.Infof("weigh engine listening on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
