package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"inspectlog/auth"
	"inspectlog/config"
	"inspectlog/deviceqr"
	"inspectlog/loader"
	"inspectlog/web"
)

func main() {
	configPath := flag.String("config", "./inspectlog.yml", "path to the YAML settings file")
	flag.Parse()

	config.SetPath(*configPath)
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("WARN: Failed to load config file: %v. Using defaults.", err)
	}
	if cfg.SessionSecret == config.Defaults().SessionSecret {
		log.Println("WARN: using the built-in session secret. Set INSPECTLOG_SESSION_SECRET in production.")
	}

	log.Println("Connecting to database...")
	dbConn, err := loader.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer dbConn.Close()
	log.Println("Database connection successful.")

	if err := loader.InitDatabase(context.Background(), dbConn, cfg.SeedCSV, cfg.DefaultLocation); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	log.Println("Database initialization complete.")

	authManager, err := auth.NewManager(cfg.SessionSecret, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("Session setup failed: %v", err)
	}
	qr := deviceqr.NewService(dbConn, config.GetConfig)

	pages, err := web.New(dbConn, authManager, qr)
	if err != nil {
		log.Fatalf("Failed to parse page templates: %v", err)
	}
	log.Println("HTML templates loaded and parsed.")

	handler := SetupRoutes(dbConn, authManager, qr, pages)

	addr := ":" + cfg.Port
	log.Printf("Starting server on %s (QR codes point to %s)", addr, cfg.BaseURL)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server start error: %v", err)
	}
}
