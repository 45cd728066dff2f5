package browser

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"mercariBot/internal/logger"
)

// DumpPage сохраняет полный скриншот и HTML страницы в каталог дампов.
// Имя файла: <origin>_<случайные две цифры>, чтобы повторные дампы
// одного и того же места не затирали друг друга.
func (b *PlaywrightBrowser) DumpPage(dumpPath, origin string) error {
	if err := os.MkdirAll(dumpPath, 0o755); err != nil {
		return err
	}

	index := rand.Intn(100)
	name := fmt.Sprintf("%s_%02d", origin, index)

	png, err := b.Screenshot()
	if err != nil {
		return fmt.Errorf("не удалось снять скриншот: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dumpPath, name+".png"), png, 0o644); err != nil {
		return err
	}

	html, err := b.Content()
	if err != nil {
		return fmt.Errorf("не удалось получить HTML: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dumpPath, name+".htm"), []byte(html), 0o644); err != nil {
		return err
	}

	b.log.Info("Дамп страницы сохранён", zap.String("name", name))
	return nil
}

// CleanDump удаляет дампы старше keepDays суток.
func CleanDump(dumpPath string, keepDays int, log *logger.Zap) {
	entries, err := os.ReadDir(dumpPath)
	if err != nil {
		return
	}

	threshold := time.Duration(keepDays) * 24 * time.Hour
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		age := time.Since(info.ModTime())
		if age <= threshold {
			continue
		}

		path := filepath.Join(dumpPath, entry.Name())
		if err := os.Remove(path); err == nil {
			log.Info("Удалён устаревший дамп",
				zap.String("path", path),
				zap.Int("days", int(age.Hours()/24)))
		}
	}
}
