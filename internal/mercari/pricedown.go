package mercari

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"mercariBot/internal/config"
	"mercariBot/internal/history"
	"mercariBot/internal/logger"
)

const (
	xpathModifiedText = `//div[@id="item-info"]//div[contains(@class,"merShowMore")]` +
		`/following-sibling::p[contains(@class, "merText")]`
	xpathFavoriteButton  = `//div[@data-testid="icon-heart-button"]/button`
	xpathCheckoutButton  = `//div[@data-testid="checkout-button"]`
	xpathEditOKButton    = `//button[contains(text(), "OK")]`
	xpathPriceInput      = `//input[@name="price"]`
	xpathShippingFee     = `//span[@data-testid="shipping-fee"]`
	xpathShippingFeeNum  = `//span[@data-testid="shipping-fee"]/span[contains(@class, "number")]`
	xpathSubmitButton    = `//button[contains(text(), "変更する")]`
	xpathListAsIsButton  = `//button[contains(text(), "このまま出品する")]`
	xpathPriceDisplay    = `//div[@data-testid="price"]`
	xpathPriceDisplayNum = `//div[@data-testid="price"]/span[2]`
)

const editPageTitle = "商品の情報を編集"

var digitsRe = regexp.MustCompile(`\d+`)

// ParseModifiedHour переводит строку относительного времени («3時間前»,
// «2日前») в часы. Словарь фиксированный; нераспознанная строка даёт
// ModifiedHourUnknown — такой товар не трогаем.
func ParseModifiedHour(text string) int {
	number := 0
	if m := digitsRe.FindString(text); m != "" {
		number, _ = strconv.Atoi(m)
	}

	switch {
	case strings.Contains(text, "秒前"), strings.Contains(text, "分前"):
		return 0
	case strings.Contains(text, "時間前"):
		return number
	case strings.Contains(text, "日前"):
		return number * 24
	case strings.Contains(text, "か月前"):
		return number * 24 * 30
	default:
		return ModifiedHourUnknown
	}
}

// GetDiscountStep выбирает ступень скидки: ступени просматриваются от
// наибольшего порога лайков к наименьшему, берётся первая подходящая.
// Внутри ступени цена ниже порога означает пропуск, а не переход к
// следующей ступени.
func GetDiscountStep(tiers []config.DiscountTier, price, favoriteCount int) (int, SkipReason) {
	sorted := make([]config.DiscountTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FavoriteCount > sorted[j].FavoriteCount
	})

	for _, tier := range sorted {
		if favoriteCount < tier.FavoriteCount {
			continue
		}
		if price >= tier.Threshold {
			return tier.Step, SkipNone
		}
		return 0, SkipPriceThreshold
	}

	return 0, SkipFavoriteCount
}

// NewPrice снижает цену на step и округляет вниз до 10 иен.
func NewPrice(price, step int) int {
	return (price - step) / 10 * 10
}

// Engine применяет политику скидок к одному товару.
type Engine struct {
	repo *history.Repository // nil — аудит отключён
	log  *logger.Zap
}

func NewEngine(repo *history.Repository, log *logger.Zap) *Engine {
	return &Engine{repo: repo, log: log}
}

// ExecuteItem вызывается на открытой карточке товара. Проверки
// пригодности возвращают пропуск без ошибки; ошибками остаются только
// нарушения пред- и постусловий и сбои драйвера.
func (e *Engine) ExecuteItem(sess *Session, profile config.Profile, mode Mode, item *ListingSummary) error {
	drv := sess.Driver()

	if item.IsSuspended {
		e.log.Info("Публикация приостановлена, пропускаю", zap.String("id", item.ID))
		return nil
	}

	modifiedText, err := drv.TextOf(xpathModifiedText)
	if err != nil {
		return err
	}
	modifiedHour := ParseModifiedHour(modifiedText)
	if modifiedHour < profile.Interval.Hour {
		e.log.Info("С последнего обновления прошло слишком мало времени, пропускаю",
			zap.String("id", item.ID), zap.Int("hours", modifiedHour))
		return nil
	}

	favoriteCount := 0
	if label, err := drv.AttrOf(xpathFavoriteButton, "aria-label"); err == nil {
		if m := digitsRe.FindString(label); m != "" {
			favoriteCount, _ = strconv.Atoi(m)
		}
	}

	if _, err := drv.ClickXPath(xpathCheckoutButton, false, true); err != nil {
		return err
	}
	if err := drv.WaitTitleContains(editPageTitle); err != nil {
		return err
	}

	// NOTE: для еды и подобного показывается «Проверка информации о товаре»
	if drv.XPathExists(xpathEditOKButton) {
		e.log.Info("Закрываю подтверждение информации о товаре")
		if _, err := drv.ClickXPath(xpathEditOKButton, false, true); err != nil {
			return err
		}
	}

	if err := drv.WaitVisible(xpathPriceInput); err != nil {
		return err
	}

	// Доставка «たのメル便» показывается отдельной строкой
	shippingFee := 0
	if drv.XPathExists(xpathShippingFee) {
		text, err := drv.TextOf(xpathShippingFeeNum)
		if err != nil {
			return err
		}
		if shippingFee, err = parsePrice(text); err != nil {
			return err
		}
	}

	price := item.Price - shippingFee

	curText, err := drv.AttrOf(xpathPriceInput, "value")
	if err != nil {
		return err
	}
	curPrice, err := parsePrice(curText)
	if err != nil {
		return err
	}
	if curPrice != price {
		return &PreconditionError{Expected: price, Actual: curPrice}
	}

	step, reason := GetDiscountStep(profile.Discount, price, favoriteCount)
	switch reason {
	case SkipPriceThreshold:
		e.log.Info("Текущая цена ниже порога, пропускаю",
			zap.Int("price", price), zap.Int("shipping", shippingFee))
		return nil
	case SkipFavoriteCount:
		e.log.Info("Количество лайков не дотягивает до условия, пропускаю",
			zap.Int("favorite", favoriteCount))
		return nil
	}

	newPrice := price
	if !mode.Debug {
		newPrice = NewPrice(price, step)
	}

	if err := drv.FillXPath(xpathPriceInput, strconv.Itoa(newPrice)); err != nil {
		return err
	}
	drv.RandomSleep(2 * time.Second)

	if _, err := drv.ClickXPath(xpathSubmitButton, true, true); err != nil {
		return err
	}
	sess.sleep(time.Second)
	drv.ClickXPath(xpathListAsIsButton, false, false)

	if err := drv.WaitPatiently(func() error {
		return drv.WaitTitleContains(normalizeName(item.Name))
	}); err != nil {
		return err
	}
	if err := drv.WaitPatiently(func() error {
		return drv.WaitVisible(xpathPriceDisplay)
	}); err != nil {
		return err
	}

	// NOTE: обновлённая цена отображается с задержкой — перечитываем страницу
	sess.sleep(3 * time.Second)
	if err := drv.Navigate(drv.URL()); err != nil {
		return err
	}
	if err := drv.WaitVisible(xpathPriceDisplay); err != nil {
		return err
	}

	totalText, err := drv.TextOf(xpathPriceDisplayNum)
	if err != nil {
		return err
	}
	newTotalPrice, err := parsePrice(totalText)
	if err != nil {
		return err
	}

	if newTotalPrice != newPrice+shippingFee {
		return &PostconditionError{Expected: newPrice + shippingFee, Actual: newTotalPrice}
	}

	e.log.Info("Цена изменена",
		zap.String("id", item.ID),
		zap.Int("old_total", item.Price),
		zap.Int("new_total", newTotalPrice))

	if e.repo != nil && !mode.Debug {
		change := &history.PriceChange{
			Profile:       profile.Name,
			ItemID:        item.ID,
			ItemName:      item.Name,
			OldPrice:      price,
			NewPrice:      newPrice,
			FavoriteCount: favoriteCount,
		}
		if err := e.repo.Record(change); err != nil {
			e.log.Warn("Не удалось записать историю изменения цены", zap.Error(err))
		}
	}

	return nil
}
