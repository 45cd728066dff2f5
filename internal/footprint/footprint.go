// Package footprint хранит отметку времени в файле. Файл переживает
// перезапуски процесса — на этом построено ограничение частоты алертов.
package footprint

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func Update(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	content := fmt.Sprintf("%d", time.Now().Unix())
	return os.WriteFile(path, []byte(content), 0o644)
}

// Elapsed возвращает время с последней отметки. Если отметки нет или она
// нечитаема, возвращается заведомо большой интервал: отсутствие отметки
// значит «давно».
func Elapsed(path string) time.Duration {
	raw, err := os.ReadFile(path)
	if err != nil {
		return time.Since(time.Unix(0, 0))
	}

	sec, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return time.Since(time.Unix(0, 0))
	}

	return time.Since(time.Unix(sec, 0))
}

func Clear(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
