// Package history сохраняет историю изменений цен в PostgreSQL.
// Подключение опционально: без настроенной базы бот работает как обычно,
// просто не ведёт аудит.
package history

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mercariBot/internal/config"
	"mercariBot/internal/logger"
)

// PriceChange — одно применённое снижение цены.
type PriceChange struct {
	ID            uint      `gorm:"primaryKey"`
	Profile       string    `gorm:"type:varchar(64);not null;index"` // Имя профиля аккаунта
	ItemID        string    `gorm:"type:varchar(32);not null;index"` // Внешний идентификатор товара
	ItemName      string    `gorm:"type:text"`
	OldPrice      int       `gorm:"not null"` // Цена до изменения (без доставки)
	NewPrice      int       `gorm:"not null"` // Цена после изменения (без доставки)
	FavoriteCount int       // Количество лайков на момент изменения
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (PriceChange) TableName() string {
	return "price_changes"
}

type Database struct {
	DB *gorm.DB
}

func New(cfg *config.Cfg, log *logger.Zap) (*Database, error) {
	dsn := DSN(cfg.Database)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к базе: %w", err)
	}

	log.Info("Подключение к базе установлено")
	return &Database{DB: db}, nil
}

func (d *Database) Close(log *logger.Zap) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("Ошибка закрытия соединения с базой")
	}
}

// DSN собирает строку подключения из настроек.
func DSN(db *config.Database) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		db.Host, db.Port, db.User, db.Password, db.Name)
}
