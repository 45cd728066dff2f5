package browser

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"go.uber.org/zap"
)

const waitRetryCount = 1

func (b *PlaywrightBrowser) WaitVisible(xpath string) error {
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}

	_, err := page.WaitForSelector(sel(xpath), playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(b.cfg.Timeout.Milliseconds())),
	})
	return err
}

// WaitClickable — видимость здесь считается достаточным признаком
// кликабельности: реальную готовность проверяет сам клик.
func (b *PlaywrightBrowser) WaitClickable(xpath string) error {
	return b.WaitVisible(xpath)
}

func (b *PlaywrightBrowser) WaitTitleContains(text string) error {
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}

	_, err := page.WaitForFunction(
		fmt.Sprintf("() => document.title.includes(%q)", text), nil,
		playwright.PageWaitForFunctionOptions{
			Timeout: playwright.Float(float64(b.cfg.Timeout.Milliseconds())),
		})
	return err
}

// WaitPatiently выполняет ожидание cond; при таймауте один раз обновляет
// страницу и повторяет ожидание. Повторный таймаут возвращается вызывающему.
func (b *PlaywrightBrowser) WaitPatiently(cond func() error) error {
	var lastErr error
	for attempt := 0; attempt <= waitRetryCount; attempt++ {
		err := cond()
		if err == nil {
			return nil
		}
		if !IsTimeout(err) {
			return err
		}

		lastErr = err
		if attempt < waitRetryCount {
			b.log.Warn("Таймаут ожидания, обновляю страницу", zap.Error(err))
			if err := b.Reload(); err != nil {
				return err
			}
		}
	}
	return lastErr
}

// IsTimeout отличает таймаут ожидания от остальных ошибок драйвера.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
