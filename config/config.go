// Package config, ayarları environment'tan (development'ta .env
// dosyasından) tek bir Config struct'ına okur. os.Getenv çağrıları burada
// toplanır; katmanların geri kalanı typed config alanları görür.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config, çalışan process'in tüm ayarları. Alt bölümler concern başına
// ayrı struct'tır; bir bileşen sadece kendi bölümünü alır.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Notify   NotifyConfig
	Memo     MemoConfig
}

// ServerConfig, HTTP listen adresi.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite dosyası ve açılış davranışı.
type DatabaseConfig struct {
	Path     string // SQLite dosya yolu (ör: ./data/sohbet.db)
	SeedDemo bool   // true ise açılışta demo user'lar eklenir (sadece development)
}

// StoreConfig, store adapter'ın timeout/retry bütçesi.
type StoreConfig struct {
	OpTimeout     time.Duration // Tek store operasyonunun üst sınırı
	RetryAttempts int           // Transport hatasında toplam deneme sayısı
	RetryBackoff  time.Duration // Denemeler arası taban bekleme (her denemede ikiye katlanır)
}

// NotifyConfig, bildirim relay ayarları (Resend).
// APIKey boşsa relay devre dışıdır — bildirimler sadece loglanır.
type NotifyConfig struct {
	ResendAPIKey string
	FromEmail    string // Gönderici adresi — Resend'de doğrulanmış domain altında olmalı
	InboxDomain  string // Kullanıcı relay inbox domain'i
}

// MemoConfig, konuşma listesi memo cache ayarları.
type MemoConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Load, Config'i environment'tan doldurur ve sayısal alanları doğrular.
func Load() (*Config, error) {
	// Varsa .env'i environment'a karıştır; production'da dosya olmadığı
	// için hata dönmemesi kasıtlı olarak yutulur.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	opTimeout, err := strconv.Atoi(getEnv("STORE_OP_TIMEOUT_SECONDS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_OP_TIMEOUT_SECONDS: %w", err)
	}

	retryAttempts, err := strconv.Atoi(getEnv("STORE_RETRY_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_RETRY_ATTEMPTS: %w", err)
	}

	retryBackoff, err := strconv.Atoi(getEnv("STORE_RETRY_BACKOFF_MS", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_RETRY_BACKOFF_MS: %w", err)
	}

	memoTTL, err := strconv.Atoi(getEnv("MEMO_TTL_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid MEMO_TTL_SECONDS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path:     getEnv("DATABASE_PATH", "./data/sohbet.db"),
			SeedDemo: getEnv("SEED_DEMO_USERS", "false") == "true",
		},
		Store: StoreConfig{
			OpTimeout:     time.Duration(opTimeout) * time.Second,
			RetryAttempts: retryAttempts,
			RetryBackoff:  time.Duration(retryBackoff) * time.Millisecond,
		},
		Notify: NotifyConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("NOTIFY_FROM_EMAIL", "notify@sohbet.app"),
			InboxDomain:  getEnv("NOTIFY_INBOX_DOMAIN", "inbox.sohbet.app"),
		},
		Memo: MemoConfig{
			TTL:             time.Duration(memoTTL) * time.Second,
			CleanupInterval: 5 * time.Minute,
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, değişken set edilmemişse fallback döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
