package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/plotline/plotline/internal/auth"
	"github.com/plotline/plotline/internal/collab"
	"github.com/plotline/plotline/internal/config"
	"github.com/plotline/plotline/internal/db"
	"github.com/plotline/plotline/internal/export"
	mw "github.com/plotline/plotline/internal/middleware"
	"github.com/plotline/plotline/internal/plot"
	"github.com/plotline/plotline/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		plots store.Store
		users auth.UserStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			slog.Error("migrate database", "error", err)
			os.Exit(1)
		}

		queries := db.New(pool)
		plots = store.NewPostgresStore(queries)
		users = auth.NewPostgresUsers(queries)
		slog.Info("using postgres storage")
	} else {
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			slog.Error("open plot directory", "dir", cfg.DataDir, "error", err)
			os.Exit(1)
		}
		plots = fs
		users = auth.NewMemoryUsers()
		slog.Info("using file storage", "dir", cfg.DataDir)
	}

	authService := auth.NewService(users, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	plotService := plot.NewService(plots, cfg.PlotOptions())
	plotHandler := plot.NewHandler(plotService)
	exportHandler := export.NewHandler(plotService)

	hub := collab.NewHub(plotService)
	go hub.Run()
	plotHandler.OnChange(hub.PlotChanged)

	r := mux.NewRouter()

	// Global middleware; CORS wraps the router so preflights reach it
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.Handle("/auth/me", authService.AuthMiddleware(http.HandlerFunc(authHandler.Me))).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Stateless evaluation, no plot involved
	r.HandleFunc("/evaluate", plot.Evaluate).Methods("POST")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	plotHandler.Routes(api)
	api.HandleFunc("/plots/{plotId}/export.csv", exportHandler.CSV).Methods("GET")
	api.HandleFunc("/plots/{plotId}/export.txt", exportHandler.Text).Methods("GET")
	api.HandleFunc("/plots/{plotId}/export.png", exportHandler.PNG).Methods("GET")

	r.HandleFunc("/ws/plot/{plotId}", collab.ServeWS(hub, authService, cfg.Origins()))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mw.CORS(cfg.Origins())(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
