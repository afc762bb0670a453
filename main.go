package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-relay/internal/chat"
	"chat-relay/internal/config"
	"chat-relay/internal/database"
	"chat-relay/internal/message"
	"chat-relay/internal/room"
	"chat-relay/internal/security"
	"chat-relay/internal/user"
	"chat-relay/internal/websocket"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	srvCfg, dbCfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewMongoDB(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.Error("database close failed", "error", err)
		}
	}()
	log.Info("connected to MongoDB", "database", dbCfg.Database)

	if err := db.CreateIndexes(ctx); err != nil {
		return err
	}

	store := chat.NewStore(
		user.NewMongoRepository(db),
		room.NewMongoRepository(db),
		message.NewMongoRepository(db),
	)

	registry := chat.NewRegistry()
	core := &chat.Core{
		Registry:  registry,
		Router:    chat.NewRouter(registry, log),
		Gateway:   store,
		Validator: security.NewInputValidator(srvCfg),
		Metrics:   config.NewServerMetrics(),
		Config:    srvCfg,
		Logger:    log,
	}

	handler := websocket.NewHandler(core, db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{username}", handler.HandleWebSocket)
	mux.HandleFunc("GET /healthz", handler.HandleHealth)
	mux.HandleFunc("GET /stats", handler.HandleStats)
	mux.Handle("/", http.FileServer(http.Dir(srvCfg.StaticDir)))

	server := &http.Server{
		Addr:    srvCfg.Addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srvCfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
