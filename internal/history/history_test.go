package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mercariBot/internal/config"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	dsn := DSN(&config.Database{
		Host:     "localhost",
		Port:     "5432",
		Name:     "mercari_bot",
		User:     "bot",
		Password: "secret",
	})
	assert.Equal(t,
		"host=localhost port=5432 user=bot password=secret dbname=mercari_bot sslmode=disable",
		dsn)
}

func TestPriceChangeTableName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "price_changes", PriceChange{}.TableName())
}
