// Command billsvc runs the billing aggregator's HTTP server: providers,
// truck ownership, rates, and bill assembly against the weigh engine.
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

	"weighstation/internal/billing"
	"weighstation/internal/billing/billingpg"
	"weighstation/internal/store"
	"weighstation/internal/weighclient"
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
	if err := store.Bootstrap(ctx, pool, billingpg.SchemaSQL); err != nil {
		log.Fatalf("bootstrap schema: %v", err)
	}

	weighClient := weighclient.New(cfg.Billing.WeighURL, cfg.Billing.WeighTimeout)
	svc := billing.NewService(billingpg.New(pool), weighClient)
	controller := billing.NewController(svc, log, cfg.Billing.RatesPath)
	router := billing.NewRouter(controller, log)

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		log.Infof("billing service listening on %s", cfg.HTTP.Addr)
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
