package mercari

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercariBot/internal/config"
	"mercariBot/internal/logger"
)

func testLogger(t *testing.T) *logger.Zap {
	t.Helper()
	log, err := logger.New("dev", "error")
	require.NoError(t, err)
	return log
}

func TestParseModifiedHour(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want int
	}{
		{"30秒前", 0},
		{"5分前", 0},
		{"1時間前", 1},
		{"13時間前", 13},
		{"2日前", 48},
		{"1か月前", 720},
		{"3か月前", 2160},
		{"не распознаётся", ModifiedHourUnknown},
		{"", ModifiedHourUnknown},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseModifiedHour(tc.text), "text=%q", tc.text)
	}
}

func TestGetDiscountStep(t *testing.T) {
	t.Parallel()

	tiers := []config.DiscountTier{
		{FavoriteCount: 0, Threshold: 1000, Step: 100},
		{FavoriteCount: 5, Threshold: 2000, Step: 200},
		{FavoriteCount: 10, Threshold: 3000, Step: 300},
	}

	cases := []struct {
		name       string
		price      int
		favorite   int
		wantStep   int
		wantReason SkipReason
	}{
		{"базовая ступень", 1500, 0, 100, SkipNone},
		{"средняя ступень", 2500, 7, 200, SkipNone},
		{"верхняя ступень", 5000, 12, 300, SkipNone},
		{"цена ниже порога ступени", 2500, 12, 0, SkipPriceThreshold},
		{"цена ниже базового порога", 500, 0, 0, SkipPriceThreshold},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			step, reason := GetDiscountStep(tiers, tc.price, tc.favorite)
			assert.Equal(t, tc.wantStep, step)
			assert.Equal(t, tc.wantReason, reason)
		})
	}

	t.Run("нет ступеней", func(t *testing.T) {
		_, reason := GetDiscountStep(nil, 10000, 100)
		assert.Equal(t, SkipFavoriteCount, reason)
	})

	t.Run("лайков меньше минимального порога", func(t *testing.T) {
		high := []config.DiscountTier{{FavoriteCount: 3, Threshold: 1000, Step: 100}}
		_, reason := GetDiscountStep(high, 5000, 2)
		assert.Equal(t, SkipFavoriteCount, reason)
	})
}

// Выбор ступени монотонен: при большем числе лайков не может быть выбрана
// ступень с меньшим порогом лайков.
func TestGetDiscountStepMonotonic(t *testing.T) {
	t.Parallel()

	tiers := []config.DiscountTier{
		{FavoriteCount: 0, Threshold: 0, Step: 100},
		{FavoriteCount: 5, Threshold: 0, Step: 200},
		{FavoriteCount: 10, Threshold: 0, Step: 300},
	}

	price := 10000
	prevStep := 0
	for favorite := 0; favorite <= 20; favorite++ {
		step, reason := GetDiscountStep(tiers, price, favorite)
		require.Equal(t, SkipNone, reason)
		assert.GreaterOrEqual(t, step, prevStep, "favorite=%d", favorite)
		prevStep = step
	}
}

func TestNewPrice(t *testing.T) {
	t.Parallel()

	for price := 0; price <= 3000; price += 173 {
		for _, step := range []int{100, 250, 777} {
			got := NewPrice(price, step)
			assert.Zero(t, got%10, "price=%d step=%d", price, step)
			assert.LessOrEqual(t, got, price-step+9, "price=%d step=%d", price, step)
		}
	}

	assert.Equal(t, 2600, NewPrice(2700, 100))
	assert.Equal(t, 2590, NewPrice(2699, 100))
}

// setupEditPage настраивает подделку так, будто открыта карточка товара
// 3000 иен с доставкой 300 иен и 5 лайками.
func setupEditPage(drv *fakeDriver) {
	drv.texts[xpathModifiedText] = "2日前"
	drv.attrs[xpathFavoriteButton+"@aria-label"] = "いいね 5"
	drv.exists[xpathShippingFee] = true
	drv.texts[xpathShippingFeeNum] = "300"
	drv.attrs[xpathPriceInput+"@value"] = "2,700"
	drv.texts[xpathPriceDisplayNum] = "2,900"
	drv.url = "https://jp.mercari.com/item/m001"
}

func testItem() *ListingSummary {
	return &ListingSummary{
		ID:    "m001",
		Name:  "テスト 商品",
		Price: 3000,
	}
}

func testProfile() config.Profile {
	return config.Profile{
		Name:     "default",
		User:     "user@example.com",
		Pass:     "secret",
		Interval: config.Interval{Hour: 24},
		Discount: []config.DiscountTier{
			{FavoriteCount: 0, Threshold: 1000, Step: 100},
		},
	}
}

func newTestSession(t *testing.T, drv *fakeDriver) *Session {
	t.Helper()
	sess := NewSession(drv, nil, testProfile(), t.TempDir(), testLogger(t))
	sess.sleep = func(d time.Duration) {}
	return sess
}

func TestExecuteItemMarksDownPrice(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	setupEditPage(drv)
	sess := newTestSession(t, drv)
	engine := NewEngine(nil, testLogger(t))

	err := engine.ExecuteItem(sess, testProfile(), Mode{}, testItem())
	require.NoError(t, err)

	// 2700 - 100 = 2600, уже кратно 10
	assert.Contains(t, drv.fills, xpathPriceInput+"=2600")
	assert.Contains(t, drv.clicks, xpathCheckoutButton)
	assert.Contains(t, drv.clicks, xpathSubmitButton)
}

func TestExecuteItemSkipsSuspended(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	setupEditPage(drv)
	sess := newTestSession(t, drv)
	engine := NewEngine(nil, testLogger(t))

	item := testItem()
	item.IsSuspended = true

	err := engine.ExecuteItem(sess, testProfile(), Mode{}, item)
	require.NoError(t, err)
	assert.Empty(t, drv.clicks)
	assert.Empty(t, drv.fills)
}

func TestExecuteItemSkipsRecentUpdate(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	setupEditPage(drv)
	drv.texts[xpathModifiedText] = "3時間前"
	sess := newTestSession(t, drv)
	engine := NewEngine(nil, testLogger(t))

	err := engine.ExecuteItem(sess, testProfile(), Mode{}, testItem())
	require.NoError(t, err)
	assert.NotContains(t, drv.clicks, xpathCheckoutButton)
}

// Нераспознанная строка времени означает «никогда не пригоден», даже при
// нулевом интервале.
func TestExecuteItemSkipsUnknownModifiedText(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	setupEditPage(drv)
	drv.texts[xpathModifiedText] = "何か変な文字列"
	sess := newTestSession(t, drv)
	engine := NewEngine(nil, testLogger(t))

	profile := testProfile()
	profile.Interval.Hour = 0

	err := engine.ExecuteItem(sess, profile, Mode{}, testItem())
	require.NoError(t, err)
	assert.NotContains(t, drv.clicks, xpathCheckoutButton)
}

func TestExecuteItemSkipsTierMiss(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	setupEditPage(drv)
	sess := newTestSession(t, drv)
	engine := NewEngine(nil, testLogger(t))

	profile := testProfile()
	profile.Discount = []config.DiscountTier{
		{FavoriteCount: 10, Threshold: 1000, Step: 100},
	}

	err := engine.ExecuteItem(sess, profile, Mode{}, testItem())
	require.NoError(t, err)
	assert.Contains(t, drv.clicks, xpathCheckoutButton)
	assert.Empty(t, drv.fills)
}

func TestExecuteItemPreconditionViolation(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	setupEditPage(drv)
	drv.attrs[xpathPriceInput+"@value"] = "2,800"
	sess := newTestSession(t, drv)
	engine := NewEngine(nil, testLogger(t))

	err := engine.ExecuteItem(sess, testProfile(), Mode{}, testItem())

	var precondition *PreconditionError
	require.ErrorAs(t, err, &precondition)
	assert.Equal(t, 2700, precondition.Expected)
	assert.Equal(t, 2800, precondition.Actual)
	assert.Empty(t, drv.fills)
}

func TestExecuteItemPostconditionViolation(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	setupEditPage(drv)
	drv.texts[xpathPriceDisplayNum] = "3,000"
	sess := newTestSession(t, drv)
	engine := NewEngine(nil, testLogger(t))

	err := engine.ExecuteItem(sess, testProfile(), Mode{}, testItem())

	var postcondition *PostconditionError
	require.ErrorAs(t, err, &postcondition)
	assert.Equal(t, 2900, postcondition.Expected)
	assert.Equal(t, 3000, postcondition.Actual)
}

// В отладочном режиме цена записывается без изменений, и проверка
// постусловия всё равно проходит полный путь записи и перечитывания.
func TestExecuteItemDryRun(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	setupEditPage(drv)
	drv.texts[xpathPriceDisplayNum] = "3,000"
	sess := newTestSession(t, drv)
	engine := NewEngine(nil, testLogger(t))

	err := engine.ExecuteItem(sess, testProfile(), Mode{Debug: true}, testItem())
	require.NoError(t, err)
	assert.Contains(t, drv.fills, xpathPriceInput+"=2700")
}

func TestExecuteItemNoShippingFee(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	setupEditPage(drv)
	drv.exists[xpathShippingFee] = false
	drv.attrs[xpathPriceInput+"@value"] = "3,000"
	drv.texts[xpathPriceDisplayNum] = "2,900"
	sess := newTestSession(t, drv)
	engine := NewEngine(nil, testLogger(t))

	err := engine.ExecuteItem(sess, testProfile(), Mode{}, testItem())
	require.NoError(t, err)
	assert.Contains(t, drv.fills, xpathPriceInput+"=2900")
}

func TestExecuteItemDismissesEditConfirmation(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	setupEditPage(drv)
	drv.exists[xpathEditOKButton] = true
	sess := newTestSession(t, drv)
	engine := NewEngine(nil, testLogger(t))

	err := engine.ExecuteItem(sess, testProfile(), Mode{}, testItem())
	require.NoError(t, err)
	assert.Contains(t, drv.clicks, xpathEditOKButton)
}

func TestExecuteItemPropagatesDriverError(t *testing.T) {
	t.Parallel()

	drv := newFakeDriver()
	setupEditPage(drv)
	delete(drv.texts, xpathModifiedText)
	sess := newTestSession(t, drv)
	engine := NewEngine(nil, testLogger(t))

	err := engine.ExecuteItem(sess, testProfile(), Mode{}, testItem())
	require.Error(t, err)
	assert.False(t, errors.As(err, new(*PreconditionError)))
	assert.True(t, strings.Contains(err.Error(), "элемент не найден"))
}
