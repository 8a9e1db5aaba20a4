package main

// POST /auth/signin – Sign in and receive a session token
// POST /auth/signup – Register an account
// POST /auth/update-account/{id} – Update a profile (bearer token)
// POST /orders – Record an order
// GET /orders?email= – Order history for a customer
// GET /products?category=&q= – Product catalog

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"

	"storefront/config"
	"storefront/devserver"
)

func main() {
	cfgPath := flag.String("config", config.DefaultFile, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// --- Server ---
	srv, err := devserver.New(devserver.Options{JWTSecret: cfg.Twin.JWTSecret, Logger: logger})
	if err != nil {
		log.Fatalf("Twin setup failed: %v", err)
	}

	logger.Info("twin running", "addr", cfg.Twin.Addr, "base_path", cfg.Twin.BasePath)
	if err := http.ListenAndServe(cfg.Twin.Addr, srv.Handler(cfg.Twin.BasePath)); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
