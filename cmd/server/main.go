package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yss-community/strategyharness/internal/metrics"
	"github.com/yss-community/strategyharness/internal/reportserver"
	"github.com/yss-community/strategyharness/internal/reportstore"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	getenv := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}

	var (
		listenAddr = flag.String("listen", getenv("YSS_SERVER_LISTEN", ":8080"), "HTTP listen address")
		dbPath     = flag.String("db", getenv("YSS_REPORT_DB", "data/harness.db"), "SQLite db file path")
		debugAddr  = flag.String("debug-listen", getenv("YSS_DEBUG_LISTEN", ""), "expvar/pprof listen address (empty to disable)")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *debugAddr != "" {
		if _, err := metrics.StartAsync(ctx, *debugAddr); err != nil {
			log.Fatalf("start debug server failed: %v", err)
		}
		log.Printf("debug server listening on %s", *debugAddr)
	}

	store, err := reportstore.Open(*dbPath)
	if err != nil {
		log.Fatalf("open report store failed: %v", err)
	}
	defer store.Close()

	srv := reportserver.New(store)
	httpSrv := &http.Server{
		Addr:              *listenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("report server listening on %s", *listenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancel() // stops the debug server alongside the main one

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
