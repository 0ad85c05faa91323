package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"suvidha.org/config"
	"suvidha.org/internal/audit"
	"suvidha.org/internal/auth"
	"suvidha.org/internal/console"
	"suvidha.org/internal/httpapi"
	"suvidha.org/internal/ids"
	"suvidha.org/internal/obs"
	"suvidha.org/internal/store/pg"
)

var version = "1.2.0"

func main() {
	obs.Init()
	cfg := config.Load()

	if cfg.DatabaseDSN == "" {
		log.Fatal("SUVIDHA_PG_DSN is required")
	}
	db, err := pg.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.AuthSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	recorder := audit.NewRecorder(pg.NewAuditStore(db))
	authSvc, err := auth.NewService(pg.NewUserStore(db), tokens, auth.WithAuditSink(recorder))
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	consoleSvc, err := console.NewService(pg.NewConsoleStore(db), ids.New)
	if err != nil {
		log.Fatalf("console service: %v", err)
	}

	api := httpapi.New(authSvc, consoleSvc, recorder, httpapi.ReadyProbe{DB: db}, version)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting suvidha-admin-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = db.Close()
	log.Println("Stopped")
}
