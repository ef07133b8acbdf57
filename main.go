package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/microgrants/cliparse"
	"github.com/danielhkuo/microgrants/contacts"
	"github.com/danielhkuo/microgrants/db"
	"github.com/danielhkuo/microgrants/middleware"
	"github.com/danielhkuo/microgrants/payments"
	"github.com/danielhkuo/microgrants/review"
	"github.com/danielhkuo/microgrants/router"
	"github.com/danielhkuo/microgrants/store"
)

func main() {
	var err error

	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if err := middleware.InitLogger(cfg.LogLevel); err != nil {
		slog.Warn("falling back to info logging", "error", err)
	}

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("database schema ready", "type", cfg.DatabaseType)

	// Collaborators
	var payer payments.Collaborator
	if cfg.PaymentsURL != "" {
		payer = payments.NewClient(cfg.PaymentsURL, cfg.CollaboratorTimeout)
	} else {
		slog.Warn("PAYMENTS_URL not set, using in-memory ledger")
		payer = payments.NewLedger()
	}

	var resolver contacts.Resolver = contacts.Static(nil)
	if cfg.ContactsURL != "" {
		cached, err := contacts.NewCachedResolver(contacts.NewHTTPResolver(cfg.ContactsURL, cfg.CollaboratorTimeout), cfg.ContactsCacheSize)
		if err != nil {
			slog.Error("contact resolver setup failed", "error", err)
			os.Exit(1)
		}
		resolver = cached
	} else {
		slog.Warn("CONTACTS_URL not set, applicant contacts will be unresolved")
	}

	s := store.New(dbConn)
	svc := review.NewService(s, payer, resolver, review.Options{MaxGrantAmountCents: cfg.MaxGrantAmountCents})

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(router.NewRouter(s, svc, cfg)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}
