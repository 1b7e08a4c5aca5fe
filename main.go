// Package main, sohbet backend'inin giriş noktası. Tüm bağımlılık grafiği
// bu dosyada, numaralı bölümler halinde elle kurulur: config → database →
// repository'ler → store adapter → hub → session manager + service'ler →
// handler'lar → router → server. Global değişken yoktur; her şey main
// içinde oluşturulup parametre olarak akar.
package main

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akinalp/sohbet/config"
	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/handlers"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg/cache"
	"github.com/akinalp/sohbet/pkg/notify"
	"github.com/akinalp/sohbet/repository"
	"github.com/akinalp/sohbet/services"
	"github.com/akinalp/sohbet/store"
	"github.com/akinalp/sohbet/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] sohbet server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to open embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// Development kolaylığı: user profilleri upstream'de yönetildiği için
	// sıfırdan açılan local DB boştur — flag açıksa demo profiller eklenir.
	if cfg.Database.SeedDemo {
		if err := db.SeedDemoUsers(context.Background()); err != nil {
			log.Fatalf("[main] failed to seed demo users: %v", err)
		}
	}

	// ─── 3. Repository Layer ───
	messageRepo := repository.NewSQLiteMessageRepo(db.Conn)
	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	followRepo := repository.NewSQLiteFollowRepo(db.Conn)
	favoriteRepo := repository.NewSQLiteFavoriteRepo(db.Conn)

	// ─── 4. Store Adapter ───
	//
	// Adapter repo'ları sarar: her mutation'a timeout + retry uygular,
	// başarıda snapshot version'ını artırıp ilgili kullanıcıların
	// subscription'larını uyandırır. Service'ler adapter'ın dar
	// interface'lerine bağımlıdır, repo'lara değil.
	adapter := store.NewAdapter(messageRepo, userRepo, followRepo, favoriteRepo, store.Options{
		OpTimeout:     cfg.Store.OpTimeout,
		RetryAttempts: cfg.Store.RetryAttempts,
		RetryBackoff:  cfg.Store.RetryBackoff,
	})

	// ─── 5. WebSocket Hub ───
	//
	// Hub projection push'larını kullanıcı bağlantılarına dağıtır;
	// service'lere EventPublisher interface'i olarak geçer. Event loop'u
	// kendi goroutine'inde döner.
	hub := ws.NewHub()
	go hub.Run()

	// ─── 6. Session Manager + Service Layer ───
	//
	// SessionManager viewer başına tek projection session'ı garanti eder.
	// Session'lar lazy kurulur: ilk liste isteği veya WS bağlantısı başlatır.
	sessionManager := services.NewSessionManager(adapter, hub)
	defer sessionManager.CloseAll()

	// Bildirim relay'i: API key yoksa log-only fallback (local development).
	var notifier notify.Notifier
	if cfg.Notify.ResendAPIKey != "" {
		notifier = notify.NewResendNotifier(cfg.Notify.ResendAPIKey, cfg.Notify.FromEmail, cfg.Notify.InboxDomain)
		log.Println("[main] notification relay enabled (resend)")
	} else {
		notifier = notify.NewLogNotifier()
		log.Println("[main] RESEND_API_KEY not set, notifications will be logged only")
	}

	listMemo := cache.New[string, *models.ConversationList](cfg.Memo.TTL, cfg.Memo.CleanupInterval)
	defer listMemo.Close()

	messageService := services.NewMessageService(adapter, adapter, notifier, hub)
	readStateService := services.NewReadStateService(adapter, sessionManager)
	conversationService := services.NewConversationService(sessionManager, adapter, listMemo)
	socialService := services.NewSocialService(adapter, adapter, hub)
	favoriteService := services.NewFavoriteService(adapter, sessionManager)

	// ─── 7. Handler Layer ───
	conversationHandler := handlers.NewConversationHandler(conversationService, readStateService)
	messageHandler := handlers.NewMessageHandler(messageService, readStateService)
	socialHandler := handlers.NewSocialHandler(socialService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)

	wsHandler := ws.NewHandler(hub)
	// WS bağlantısı session'ı ısındırır — kullanıcı bağlanır bağlanmaz
	// fold'lar çalışır ve ilk conversation_refresh push'u gider.
	wsHandler.SetOnConnect(func(userID string) {
		sessionManager.Get(userID)
	})

	// ─── 8. Router ───
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Conversations
	mux.HandleFunc("GET /api/conversations", conversationHandler.List)
	mux.HandleFunc("POST /api/conversations/{counterpartId}/read", conversationHandler.MarkRead)

	// Messages
	mux.HandleFunc("POST /api/messages", messageHandler.Send)
	mux.HandleFunc("GET /api/messages/{counterpartId}", messageHandler.Thread)

	// Follows
	mux.HandleFunc("POST /api/follows/{targetId}", socialHandler.Follow)
	mux.HandleFunc("DELETE /api/follows/{targetId}", socialHandler.Unfollow)
	mux.HandleFunc("GET /api/follows/followed", socialHandler.ListFollowed)
	mux.HandleFunc("GET /api/follows/followers", socialHandler.ListFollowers)
	mux.HandleFunc("GET /api/follows/suggestions", socialHandler.ListSuggestions)

	// Favorites
	mux.HandleFunc("POST /api/favorites/{counterpartId}", favoriteHandler.Toggle)

	// WebSocket — kimlik ?user_id= ile gelir (upgrade isteğine header
	// eklenemediğinden; bkz. ws/handler.go)
	mux.HandleFunc("GET /ws", wsHandler.HandleConnection)

	// ─── 9. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-User-ID"},
		AllowCredentials: true,
		Debug:            false,
	})

	handler := corsHandler.Handler(mux)

	// ─── 10. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 11. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce session'ları ve WebSocket bağlantılarını kapat, sonra HTTP
	// server'ı — yeni request kabul etmeyi durdurur, mevcut request'lerin
	// bitmesini bekler (5sn timeout).
	sessionManager.CloseAll()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
