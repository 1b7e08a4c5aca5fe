// Package database, SQLite bağlantısını açar ve şemayı migration'larla kurar.
//
// database/sql tek başına driver içermez; modernc.org/sqlite blank import
// ile kendini "sqlite" adıyla kaydeder. Pure-Go olduğu için CGO gerekmez.
package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// DB, bağlantı pool'unu saran struct. *sql.DB zaten thread-safe bir
// pool'dur; repository'ler Conn'u doğrudan paylaşır.
type DB struct {
	Conn *sql.DB
}

// New, dbPath'teki SQLite dosyasını açar (dizini yoksa oluşturur) ve
// migrationsFS içindeki .sql dosyalarını sırayla uygular.
//
// Pragma'lar bağlantı string'inde taşınır:
//   - foreign_keys(1): referans bütünlüğü
//   - journal_mode(WAL): projection session'ların snapshot okumaları
//     mutation'larla sürekli yarışır; WAL olmadan her yazma okuyucuları
//     kilitlerdi.
func New(dbPath string, migrationsFS fs.FS) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{Conn: conn}
	if err := db.migrate(migrationsFS); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Println("[database] connected, schema up to date")
	return db, nil
}

// Close, pool'u kapatır. Çağıran defer ile bağlar.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// migrate, uygulanmamış migration dosyalarını alfabetik sırada (001_, 002_,
// ...) çalıştırır ve her birini schema_migrations tablosuna işler. Tracking
// tablosu sayesinde ALTER TABLE gibi tekrar çalıştırılamayan migration'lar
// ikinci açılışta atlanır.
func (db *DB) migrate(migrationsFS fs.FS) error {
	if _, err := db.Conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := listMigrationFiles(migrationsFS)
	if err != nil {
		return err
	}

	applied, err := db.appliedMigrations()
	if err != nil {
		return err
	}

	// Tracking tablosu boş ama şema zaten kurulu ise bu DB, tracking
	// eklenmeden önceki bir sürümle oluşturulmuş demektir: dosyaları
	// çalıştırmadan applied olarak işaretle.
	if len(applied) == 0 {
		exists, err := db.schemaExists()
		if err != nil {
			return err
		}
		if exists {
			for _, file := range files {
				if err := db.recordMigration(file); err != nil {
					return err
				}
			}
			log.Printf("[database] adopted existing schema (%d migrations marked applied)", len(files))
			return nil
		}
	}

	for _, file := range files {
		if applied[file] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		if err := db.applyFile(file, string(content)); err != nil {
			return err
		}
		if err := db.recordMigration(file); err != nil {
			return err
		}

		log.Printf("[database] migration applied: %s", file)
	}

	return nil
}

func listMigrationFiles(migrationsFS fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (db *DB) appliedMigrations() (map[string]bool, error) {
	rows, err := db.Conn.Query("SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan migration row: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// schemaExists, çekirdek tablonun varlığına bakar — messages tablosu varsa
// şema daha önce kurulmuştur.
func (db *DB) schemaExists() (bool, error) {
	var n int
	err := db.Conn.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='messages'",
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect sqlite_master: %w", err)
	}
	return n > 0, nil
}

func (db *DB) recordMigration(file string) error {
	if _, err := db.Conn.Exec(
		"INSERT INTO schema_migrations (filename) VALUES (?)", file,
	); err != nil {
		return fmt.Errorf("record migration %s: %w", file, err)
	}
	return nil
}

// applyFile, bir migration dosyasını statement-by-statement çalıştırır.
// Yarım kalmış bir migration tekrar denendiğinde "duplicate column name"
// gibi hatalar üretir; bunlar atlanır ki dosyanın kalanı uygulanabilsin.
func (db *DB) applyFile(filename, content string) error {
	for i, stmt := range splitSQL(content) {
		if _, err := db.Conn.Exec(stmt); err != nil {
			if isRecoverable(err) {
				log.Printf("[database] %s: statement %d skipped (%s)", filename, i+1, err)
				continue
			}
			return fmt.Errorf("apply %s statement %d: %w", filename, i+1, err)
		}
	}
	return nil
}

func isRecoverable(err error) bool {
	// duplicate column name: ALTER TABLE ADD COLUMN daha önce çalışmış.
	return strings.Contains(err.Error(), "duplicate column name")
}

// splitSQL, SQL metnini noktalı virgülden böler; tek tırnaklı string
// literal içindeki noktalı virgüller ('' escape dahil) ayraç sayılmaz.
func splitSQL(content string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if ch == '\'' {
			if inString && i+1 < len(content) && content[i+1] == '\'' {
				current.WriteByte(ch)
				current.WriteByte(content[i+1])
				i++
				continue
			}
			inString = !inString
		}

		if ch == ';' && !inString {
			if s := strings.TrimSpace(current.String()); s != "" {
				statements = append(statements, s)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		statements = append(statements, s)
	}
	return statements
}
