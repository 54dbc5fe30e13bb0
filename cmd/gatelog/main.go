package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gatelog/internal/audit"
	"gatelog/internal/auth"
	"gatelog/internal/config"
	"gatelog/internal/database"
	"gatelog/internal/server"
	"gatelog/internal/session"
)

var (
	// Version will be set during build
	Version = "dev"

	// Command line flags
	port       = flag.Int("port", 0, "Port to run the server on (default: 8080 or GATELOG_PORT)")
	dbPath     = flag.String("db", "", "Path to database file (default: data/gatelog.db or GATELOG_DB_PATH)")
	logDir     = flag.String("logs", "", "Directory for login attempt logs (default: data/logs or GATELOG_LOG_DIR)")
	delay      = flag.Duration("failure-delay", 0, "Delay applied to failed logins (default: 3s or GATELOG_FAILURE_DELAY)")
	failClosed = flag.Bool("audit-fail-closed", false, "Fail login requests when the attempt log cannot be written")
	useHTTPS   = flag.Bool("https", false, "Mark session cookies HTTPS-only")
	version    = flag.Bool("version", false, "Print version information")
)

func main() {
	// Parse command line flags
	flag.Parse()

	// Check if version flag is set
	if *version {
		fmt.Printf("Gatelog version %s\n", Version)
		return
	}

	// Setup logging
	logger := log.New(os.Stdout, "gatelog: ", log.LstdFlags|log.Lshortfile)

	// Get base configuration from environment
	cfg := config.GetConfig()

	// Override with command line flags if provided
	if *port > 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *logDir != "" {
		cfg.LogDir = *logDir
	}
	if *delay > 0 {
		cfg.FailureDelay = *delay
	}

	// Log startup configuration
	logger.Printf("Starting Gatelog v%s", Version)
	logger.Printf("Port: %d", cfg.Port)
	logger.Printf("Database: %s", cfg.DBPath)
	logger.Printf("Attempt logs: %s", cfg.LogDir)
	logger.Printf("Failure delay: %s", cfg.FailureDelay)

	// Create necessary directories
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Fatalf("Failed to create database directory: %v", err)
	}

	// Initialize database
	dbConfig := database.DefaultConfig()
	db, err := database.NewDB(cfg.DBPath, dbConfig)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Seed the demo account if absent
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := auth.EnsureSeedUser(ctx, db, logger); err != nil {
		cancel()
		logger.Fatalf("Failed to seed user: %v", err)
	}
	cancel()

	// Open the attempt log for this process run
	policy := audit.FailOpen
	if *failClosed {
		policy = audit.FailClosed
	}
	attempts, err := audit.NewLogger(cfg.LogDir, policy, logger)
	if err != nil {
		logger.Fatalf("Failed to open attempt log: %v", err)
	}
	defer attempts.Close()
	logger.Printf("Attempt log: %s", attempts.Path())

	// Session keys live for this process only; a restart signs out everyone
	keys, err := session.NewKeys()
	if err != nil {
		logger.Fatalf("Failed to generate session keys: %v", err)
	}
	sessions := session.NewManager(keys, *useHTTPS)

	authService := auth.NewService(db, attempts, cfg.FailureDelay)

	// Initialize server with configuration
	srv, err := server.NewServer(db, logger, authService, sessions, server.Config{
		UseHTTPS: *useHTTPS,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize server: %v", err)
	}

	// Start server
	logger.Printf("Starting server on port %d", cfg.Port)
	if err := srv.Start(cfg.GetAddress()); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
