package main

import (
	"errors"
	"log"
	"os"

	"coursehub/internal/pkg/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// usage: migrate [up|down]
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatalf("migrations target postgres, got driver %q", cfg.Database.Driver)
	}

	m, err := migrate.New("file://migrations", cfg.Database.URL)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	default:
		log.Fatalf("unknown direction %q, want up or down", direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if !errors.As(err, &dirty) {
			log.Fatal(err)
		}
		// 上次迁移中断，回退到前一版本后重试
		prev := dirty.Version - 1
		if prev < 1 {
			prev = -1 // 无版本
		}
		log.Printf("database is dirty at version %d, forcing %d", dirty.Version, prev)
		if err := m.Force(prev); err != nil {
			log.Fatal("failed to force version: ", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal(err)
		}
	}

	version, dirty, _ := m.Version()
	log.Printf("migration %s successful, version=%d dirty=%v", direction, version, dirty)
}
