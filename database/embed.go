package database

import "embed"

// EmbeddedMigrations, migrations/ altındaki .sql dosyalarını binary'ye
// gömer; deploy edilen binary'nin yanında migration dosyası taşınmaz.
// main.go fs.Sub ile alt dizini açıp New'a verir.
//
//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS
