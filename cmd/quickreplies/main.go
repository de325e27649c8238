package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lojasmm/quickreplies/internal/api"
	"github.com/lojasmm/quickreplies/internal/bot"
	"github.com/lojasmm/quickreplies/internal/config"
	"github.com/lojasmm/quickreplies/internal/preview"
	"github.com/lojasmm/quickreplies/internal/session"
	"github.com/lojasmm/quickreplies/internal/store"
	"github.com/lojasmm/quickreplies/internal/whatsapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logFile := cfg.SetupLog()
	defer logFile.Close()

	db, err := store.NewBoltStore(filepath.Join(cfg.DataDir, "quickreplies.db"))
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer db.Close()

	waClient := whatsapp.NewClient(cfg.WAAPIURL, cfg.WAPhoneNumberID, cfg.WAAccessToken)
	sessionMgr := session.NewManager()

	// Idle chats drop their selector; it is re-mounted from the store on the next event.
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := sessionMgr.Cleanup(1 * time.Hour); n > 0 {
				log.Printf("quickreplies: dropped %d idle sessions", n)
			}
		}
	}()

	botHandler := bot.NewHandler(waClient, db, sessionMgr, bot.Options{
		Color:    cfg.QRColor,
		SendText: cfg.QRSendText,
		MenuText: cfg.QRMenuText,
		Logger:   log.Default(),
	})
	webhookHandler := whatsapp.NewWebhookHandler(cfg.WAVerifyToken, botHandler.HandleMessage)
	apiHandler := api.NewHandler(cfg.APIToken, botHandler, db)
	previewHandler := preview.NewHandler(botHandler)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/webhook", webhookHandler.HandleVerify)
	r.Post("/webhook", webhookHandler.HandleIncoming)

	r.Mount("/api", apiHandler.Routes())

	r.Get("/preview/{phone}", previewHandler.HandlePage)
	r.Post("/preview/{phone}", previewHandler.HandlePress)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("quickreplies: listening on :%s (%s)", cfg.Port, cfg.BaseURL)
		log.Printf("quickreplies: webhook verify token = %s", cfg.WAVerifyToken)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("quickreplies: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Println("quickreplies: stopped")
}
