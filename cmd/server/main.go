package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"focusloop/backend/internal/config"
	"focusloop/backend/internal/db"
	"focusloop/backend/internal/engine"
	"focusloop/backend/internal/handler"
	"focusloop/backend/internal/router"
	"focusloop/backend/internal/service"
	"focusloop/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	records := store.NewSQLiteRecords(database)
	settingsStore := store.NewSettingsStore(records)
	historyLog := store.NewHistoryLog(records)

	eng := engine.New(settingsStore.Load(ctx), historyLog, engine.Config{
		TickInterval: cfg.TickInterval,
	})
	defer eng.Close()

	authService, err := service.NewAuthService(cfg.APIPassphrase, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("init auth: %v", err)
	}

	authHandler := handler.NewAuthHandler(authService)
	timerHandler := handler.NewTimerHandler(eng, settingsStore, historyLog)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.New(authService, authHandler, timerHandler, cfg.CORSOrigins),
	}

	go func() {
		log.Printf("backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("run server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	eng.Pause()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown server: %v", err)
	}
}
