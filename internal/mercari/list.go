package mercari

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"mercariBot/internal/browser"
	"mercariBot/internal/config"
)

const (
	xpathItemList   = `//div[@data-testid="listed-item-list"]//div[contains(@class, "merListItem")]`
	xpathMoreButton = `//div[contains(@class, "merButton")]/button[contains(text(), "もっと見る")]`
	xpathMyListings = `//a[contains(text(), "出品した商品")]`
)

// Сколько раз повторять обработку товара после таймаута.
const itemRetryCount = 3

// Mode — режим запуска. В отладочном режиме цена не меняется и
// обрабатывается только первый товар.
type Mode struct {
	Debug bool
}

// ItemFunc — обработчик одного товара, вызывается на странице его карточки.
type ItemFunc func(sess *Session, profile config.Profile, mode Mode, item *ListingSummary) error

var spaceRe = regexp.MustCompile(` +`)

// normalizeName схлопывает последовательности пробелов: в заголовке
// страницы название товара отображается с одиночными пробелами.
func normalizeName(name string) string {
	return spaceRe.ReplaceAllString(name, " ")
}

// IterItemsOnDisplay обходит все выставленные товары: раскрывает список
// целиком, затем по индексу открывает каждый товар и прогоняет обработчики.
// Список отражает один снимок DOM: после каждого товара страница списка
// загружается заново и раскрывается снова.
func (s *Session) IterItemsOnDisplay(profile config.Profile, mode Mode, itemFuncs []ItemFunc) error {
	if _, err := s.drv.ClickXPath(xpathAccountButton, true, true); err != nil {
		return err
	}
	if _, err := s.drv.ClickXPath(xpathMyListings, true, true); err != nil {
		return err
	}
	if err := s.drv.WaitVisible(xpathItemList); err != nil {
		return err
	}
	s.sleep(time.Second)

	if err := s.expandAll(); err != nil {
		return err
	}

	itemCount := s.drv.CountXPath(xpathItemList)
	s.log.Info("Получен список выставленных товаров", zap.Int("count", itemCount))

	listURL := s.drv.URL()
	for i := 1; i <= itemCount; i++ {
		if err := s.executeItem(profile, mode, i, itemFuncs); err != nil {
			return err
		}

		if mode.Debug {
			s.log.Info("Отладочный режим: останавливаюсь после первого товара")
			break
		}

		s.drv.RandomSleep(10 * time.Second)

		// Карточка товара уводит со страницы списка — возвращаемся
		if err := s.drv.Navigate(listURL); err != nil {
			return err
		}
		if err := s.drv.WaitVisible(xpathItemList); err != nil {
			return err
		}
		if err := s.expandAll(); err != nil {
			return err
		}
	}

	return nil
}

// expandAll нажимает «もっと見る», пока кнопка не исчезнет. Границей цикла
// служит отсутствие кнопки, а не фиксированное число нажатий.
func (s *Session) expandAll() error {
	for s.drv.XPathExists(xpathMoreButton) {
		if _, err := s.drv.ClickXPath(xpathMoreButton, true, true); err != nil {
			return err
		}
		s.sleep(2 * time.Second)
	}
	return nil
}

// parseItem разбирает строку списка с данным индексом (XPath нумерует с 1).
func (s *Session) parseItem(index int) (*ListingSummary, error) {
	itemXPath := fmt.Sprintf("%s[%d]", xpathItemList, index)

	url, err := s.drv.AttrOf(itemXPath+"//a", "href")
	if err != nil {
		return nil, fmt.Errorf("не удалось получить ссылку товара %d: %w", index, err)
	}
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	id := parts[len(parts)-1]

	name, err := s.drv.TextOf(itemXPath + `//span[contains(@class, "itemLabel")]`)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить название товара %d: %w", index, err)
	}

	priceText, err := s.drv.TextOf(itemXPath + `//span[@class="merPrice"]/span[contains(@class, "number")]`)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить цену товара %d: %w", index, err)
	}
	price, err := parsePrice(priceText)
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать цену товара %d: %w", index, err)
	}

	suspended := s.drv.XPathExists(itemXPath + `//span[contains(@class, "informationLabel")]`)

	viewCount := 0
	viewXPath := itemXPath + `//mer-icon-eye-outline/following-sibling::span[contains(@class, "iconText")]`
	if text, err := s.drv.TextOf(viewXPath); err == nil {
		if n, err := strconv.Atoi(text); err == nil {
			viewCount = n
		}
	}

	return &ListingSummary{
		ID:          id,
		URL:         url,
		Name:        name,
		Price:       price,
		ViewCount:   viewCount,
		IsSuspended: suspended,
	}, nil
}

// executeItem открывает карточку товара и прогоняет обработчики.
// Таймаут внутри обработчика не фатален: страница товара открывается
// заново, попытка повторяется ограниченное число раз.
func (s *Session) executeItem(profile config.Profile, mode Mode, index int, itemFuncs []ItemFunc) error {
	item, err := s.parseItem(index)
	if err != nil {
		return err
	}

	s.log.Info("Обрабатываю товар",
		zap.String("id", item.ID),
		zap.String("name", item.Name),
		zap.Int("price", item.Price),
		zap.Int("view", item.ViewCount))

	if err := s.drv.ScrollTo(0, 0); err != nil {
		return err
	}

	linkXPath := fmt.Sprintf("%s[%d]//a", xpathItemList, index)
	if err := s.drv.ScrollToElement(linkXPath); err != nil {
		return err
	}
	// NOTE: после прокрутки ссылка может оказаться под шапкой, сдвигаемся чуть выше
	s.drv.Evaluate("() => window.scrollTo(0, window.pageYOffset - 200)")

	if _, err := s.drv.ClickXPath(linkXPath, false, true); err != nil {
		return err
	}
	if err := s.drv.WaitTitleContains(normalizeName(item.Name)); err != nil {
		return err
	}

	itemURL := s.drv.URL()

	for _, itemFunc := range itemFuncs {
		failCount := 0
		for {
			err := itemFunc(s, profile, mode, item)
			if err == nil {
				break
			}
			if !browser.IsTimeout(err) {
				return err
			}

			failCount++
			if failCount > itemRetryCount {
				return err
			}
			s.log.Warn("Таймаут, повторяю обработку товара", zap.String("id", item.ID))

			if s.drv.URL() != itemURL {
				s.drv.Back()
				s.sleep(time.Second)
			}
			if s.drv.URL() != itemURL {
				if err := s.drv.Navigate(itemURL); err != nil {
					return err
				}
			}
			s.drv.RandomSleep(5 * time.Second)
		}

		s.sleep(10 * time.Second)
	}

	return nil
}

func parsePrice(text string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(text), ",", ""))
}
