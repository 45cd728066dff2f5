package browser

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
)

func sel(xpath string) string {
	return "xpath=" + xpath
}

// ClickXPath кликает по элементу, найденному по XPath.
// При wait сначала дожидается кликабельности (таймаут возвращается ошибкой).
// Отсутствующий элемент — не ошибка: возвращается false, чтобы вызывающий
// код одинаково обрабатывал необязательные элементы интерфейса.
// Перед кликом выполняется наведение курсора.
func (b *PlaywrightBrowser) ClickXPath(xpath string, wait bool, warnIfMissing bool) (bool, error) {
	page := b.getPage()
	if page == nil {
		return false, fmt.Errorf("браузер не запущен")
	}

	if wait {
		if err := b.WaitClickable(xpath); err != nil {
			return false, err
		}
	}

	elements, err := page.QuerySelectorAll(sel(xpath))
	if err != nil || len(elements) == 0 {
		if warnIfMissing {
			b.log.Warn("Элемент не найден", zap.String("xpath", xpath))
		}
		return false, nil
	}

	element := elements[0]
	if err := element.Hover(); err == nil {
		time.Sleep(50 * time.Millisecond)
	}

	if err := element.Click(); err != nil {
		return false, err
	}
	return true, nil
}

func (b *PlaywrightBrowser) FillXPath(xpath, value string) error {
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}
	return page.Fill(sel(xpath), value)
}

func (b *PlaywrightBrowser) XPathExists(xpath string) bool {
	return b.CountXPath(xpath) != 0
}

func (b *PlaywrightBrowser) CountXPath(xpath string) int {
	page := b.getPage()
	if page == nil {
		return 0
	}

	elements, err := page.QuerySelectorAll(sel(xpath))
	if err != nil {
		return 0
	}
	return len(elements)
}

func (b *PlaywrightBrowser) IsDisplayed(xpath string) bool {
	page := b.getPage()
	if page == nil {
		return false
	}

	elements, err := page.QuerySelectorAll(sel(xpath))
	if err != nil || len(elements) == 0 {
		return false
	}

	visible, err := elements[0].IsVisible()
	return err == nil && visible
}

func (b *PlaywrightBrowser) TextOf(xpath string) (string, error) {
	page := b.getPage()
	if page == nil {
		return "", fmt.Errorf("браузер не запущен")
	}

	element, err := page.QuerySelector(sel(xpath))
	if err != nil {
		return "", err
	}
	if element == nil {
		return "", fmt.Errorf("элемент не найден: %s", xpath)
	}

	text, err := element.TextContent()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (b *PlaywrightBrowser) AttrOf(xpath, name string) (string, error) {
	page := b.getPage()
	if page == nil {
		return "", fmt.Errorf("браузер не запущен")
	}

	element, err := page.QuerySelector(sel(xpath))
	if err != nil {
		return "", err
	}
	if element == nil {
		return "", fmt.Errorf("элемент не найден: %s", xpath)
	}

	value, err := element.GetAttribute(name)
	if err != nil {
		return "", err
	}
	return value, nil
}

func (b *PlaywrightBrowser) ScrollTo(x, y int) error {
	_, err := b.Evaluate(fmt.Sprintf("() => window.scrollTo(%d, %d)", x, y))
	return err
}

func (b *PlaywrightBrowser) ScrollToElement(xpath string) error {
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}

	element, err := page.QuerySelector(sel(xpath))
	if err != nil {
		return err
	}
	if element == nil {
		return fmt.Errorf("элемент не найден: %s", xpath)
	}

	if err := element.ScrollIntoViewIfNeeded(); err != nil {
		_, err = element.Evaluate(`el => el.scrollIntoView({behavior: 'auto', block: 'center'})`)
		if err != nil {
			return fmt.Errorf("ошибка прокрутки к элементу: %w", err)
		}
		time.Sleep(200 * time.Millisecond)
	}

	return nil
}

// RandomSleep спит случайное время в диапазоне [0.8*base, 1.2*base],
// чтобы запросы не шли с фиксированным интервалом.
func (b *PlaywrightBrowser) RandomSleep(base time.Duration) {
	const ratio = 0.8

	min := float64(base) * ratio
	spread := float64(base) * (1 - ratio) * 2
	time.Sleep(time.Duration(min + spread*rand.Float64()))
}
