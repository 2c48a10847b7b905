package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinedeck/api"
	"cinedeck/config"
	"cinedeck/handlers"
	"cinedeck/services/catalog"
	"cinedeck/services/gateway"
	"cinedeck/services/pager"
	"cinedeck/services/profile"
	"cinedeck/services/suggest"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	configFlag := flag.String("config", "", "path to settings.json (default $CINEDECK_CONFIG or cache/settings.json)")
	flag.Parse()

	fmt.Println("cinedeck backend starting...")

	// Determine config path (flag, env or default)
	configPath := *configFlag
	if configPath == "" {
		configPath = os.Getenv("CINEDECK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("[main] could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("[main] logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	gw := gateway.NewClient(gateway.Options{
		APIKey:      settings.Gateway.APIKey,
		BaseURL:     settings.Gateway.BaseURL,
		Language:    settings.Gateway.Language,
		Timeout:     settings.Gateway.Timeout(),
		MinInterval: settings.Gateway.MinInterval(),
	})
	if !gw.IsConfigured() {
		log.Printf("[main] no gateway api key configured; set %s or gateway.apiKey in %s", config.APIKeyEnv, configPath)
	}
	images := gateway.NewImages(gateway.ImageOptions{
		BaseURL:      settings.Images.BaseURL,
		Placeholder:  settings.Images.Placeholder,
		PosterSize:   settings.Images.PosterSize,
		BackdropSize: settings.Images.BackdropSize,
		ProfileSize:  settings.Images.ProfileSize,
	})

	catalogSvc := catalog.NewService(gw, catalog.NewStore(), catalog.Options{
		HomeConcurrency: settings.Paging.HomeConcurrency,
	})
	profileSvc := profile.NewService()

	catalogHandler := handlers.NewCatalogHandler(catalogSvc, images)
	viewsHandler := handlers.NewViewsHandler(catalogSvc, images, pager.Options{
		InitialPages:     settings.Paging.InitialPages,
		Proximity:        settings.Paging.Proximity,
		IgnoreEmptyPages: settings.Paging.IgnoreEmptyPages,
	}, settings.Paging.SessionIdle())
	suggestHandler := handlers.NewSuggestHandler(catalogSvc, images, suggest.Options{
		Quiet:     settings.Suggestions.Debounce(),
		MinLength: settings.Suggestions.MinLength,
		Limit:     settings.Suggestions.Limit,
	}, settings.Paging.SessionIdle())
	profileHandler := handlers.NewProfileHandler(profileSvc)

	r := mux.NewRouter()
	api.Register(r, catalogHandler, viewsHandler, suggestHandler, profileHandler)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	}).Methods(http.MethodGet)

	addr := settings.Server.Addr()
	log.Printf("[main] server starting on %s", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("[main] shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] server shutdown error: %v", err)
	}

	// Stop background page loads and pending suggestion requests
	viewsHandler.Close()
	suggestHandler.Close()

	log.Println("[main] shutdown complete")
}
