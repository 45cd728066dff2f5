package migrations

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"mercariBot/internal/config"
	"mercariBot/internal/logger"
)

const sourceURL = "file://migrations"

// Run накатывает схему базы истории. Без настроенной базы — ничего не
// делает.
func Run(cfg *config.Cfg, log *logger.Zap) error {
	if cfg.Database == nil {
		return nil
	}

	db := cfg.Database
	databaseURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		url.QueryEscape(db.User), url.QueryEscape(db.Password), db.Host, db.Port, db.Name)

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("не удалось инициализировать миграции: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("не удалось применить миграции: %w", err)
	}

	log.Info("Миграции применены", zap.String("source", sourceURL))
	return nil
}
