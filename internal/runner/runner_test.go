package runner

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercariBot/internal/browser"
	"mercariBot/internal/challenge"
	"mercariBot/internal/config"
	"mercariBot/internal/logger"
	"mercariBot/internal/mercari"
	"mercariBot/internal/notify"
)

// stubDriver — минимальный драйвер: сессия считается уже открытой
// (кнопка аккаунта видна), список товаров пуст.
type stubDriver struct {
	navigateErr error

	dumps  []string
	closed bool
}

var _ browser.Driver = (*stubDriver)(nil)

func (d *stubDriver) Launch() error { return nil }

func (d *stubDriver) Navigate(url string) error { return d.navigateErr }

func (d *stubDriver) Reload() error { return nil }

func (d *stubDriver) Back() error { return nil }

func (d *stubDriver) URL() string { return "https://jp.mercari.com" }

func (d *stubDriver) Content() (string, error) { return "<html></html>", nil }

func (d *stubDriver) Screenshot() ([]byte, error) { return []byte("png"), nil }

func (d *stubDriver) Evaluate(script string) (any, error) { return nil, nil }

func (d *stubDriver) ClickXPath(xpath string, wait, warnIfMissing bool) (bool, error) {
	return true, nil
}

func (d *stubDriver) FillXPath(xpath, value string) error { return nil }

func (d *stubDriver) XPathExists(xpath string) bool {
	return strings.Contains(xpath, "account-button")
}

func (d *stubDriver) IsDisplayed(xpath string) bool { return false }

func (d *stubDriver) CountXPath(xpath string) int { return 0 }

func (d *stubDriver) TextOf(xpath string) (string, error) { return "", nil }

func (d *stubDriver) AttrOf(xpath, name string) (string, error) { return "", nil }

func (d *stubDriver) ScrollTo(x, y int) error { return nil }

func (d *stubDriver) ScrollToElement(xpath string) error { return nil }

func (d *stubDriver) WaitVisible(xpath string) error { return nil }

func (d *stubDriver) WaitClickable(xpath string) error { return nil }

func (d *stubDriver) WaitTitleContains(text string) error { return nil }

func (d *stubDriver) WaitPatiently(cond func() error) error { return cond() }

func (d *stubDriver) RandomSleep(base time.Duration) {}

func (d *stubDriver) DumpPage(dumpPath, origin string) error {
	d.dumps = append(d.dumps, origin)
	return nil
}

func (d *stubDriver) LogMemoryUsage() {}

func (d *stubDriver) Close() error {
	d.closed = true
	return nil
}

type countingPoster struct {
	posts   int
	uploads int
}

func (p *countingPoster) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	p.posts++
	return channelID, "1.2", nil
}

func (p *countingPoster) UploadFileV2(params slack.UploadFileV2Parameters) (*slack.FileSummary, error) {
	p.uploads++
	return &slack.FileSummary{ID: "F1"}, nil
}

func testLogger(t *testing.T) *logger.Zap {
	t.Helper()
	log, err := logger.New("dev", "error")
	require.NoError(t, err)
	return log
}

func testCfg(t *testing.T, profiles ...config.Profile) *config.Cfg {
	t.Helper()
	return &config.Cfg{
		Profiles: profiles,
		Data:     config.Data{Path: t.TempDir()},
	}
}

func testProfile(name string) config.Profile {
	return config.Profile{
		Name:     name,
		User:     "user@example.com",
		Pass:     "secret",
		Interval: config.Interval{Hour: 24},
		Discount: []config.DiscountTier{{Threshold: 1000, Step: 100}},
	}
}

func newTestRunner(t *testing.T, cfg *config.Cfg, poster *countingPoster) *Runner {
	t.Helper()
	log := testLogger(t)
	notifier := notify.NewWithClient(poster, "mercari-bot",
		config.Channel{Name: "#error", ID: "C1"}, 10, cfg.Data.FootprintPath(), log)
	resolver := challenge.NewTerminalResolver(strings.NewReader(""), &strings.Builder{}, log)
	return New(cfg, log, notifier, resolver, nil, mercari.Mode{})
}

func TestRunAllSuccess(t *testing.T) {
	t.Parallel()

	cfg := testCfg(t, testProfile("default"))
	poster := &countingPoster{}
	r := newTestRunner(t, cfg, poster)

	drv := &stubDriver{}
	r.newDriver = func(profile config.Profile) (browser.Driver, error) {
		return drv, nil
	}

	assert.Equal(t, 0, r.RunAll())
	assert.True(t, drv.closed)
	assert.Equal(t, 0, poster.posts)
	assert.Empty(t, drv.dumps)
}

// Сбой профиля даёт алерт, дамп и закрытый браузер; код выхода считает
// неудавшиеся профили.
func TestRunAllContainsFailure(t *testing.T) {
	t.Parallel()

	cfg := testCfg(t, testProfile("default"))
	poster := &countingPoster{}
	r := newTestRunner(t, cfg, poster)

	drv := &stubDriver{navigateErr: errors.New("сеть недоступна")}
	r.newDriver = func(profile config.Profile) (browser.Driver, error) {
		return drv, nil
	}

	assert.Equal(t, 1, r.RunAll())
	assert.True(t, drv.closed)
	assert.Equal(t, 1, poster.posts)
	assert.Equal(t, 1, poster.uploads)
	assert.Equal(t, []string{"execute"}, drv.dumps)
}

// Ошибка одного профиля не прерывает обработку остальных.
func TestRunAllIsolatesProfiles(t *testing.T) {
	t.Parallel()

	cfg := testCfg(t, testProfile("first"), testProfile("second"))
	poster := &countingPoster{}
	r := newTestRunner(t, cfg, poster)

	created := 0
	r.newDriver = func(profile config.Profile) (browser.Driver, error) {
		created++
		if profile.Name == "first" {
			return &stubDriver{navigateErr: errors.New("сеть недоступна")}, nil
		}
		return &stubDriver{}, nil
	}

	assert.Equal(t, 1, r.RunAll())
	assert.Equal(t, 2, created)
}

func TestRunAllDriverLaunchFailure(t *testing.T) {
	t.Parallel()

	cfg := testCfg(t, testProfile("default"))
	poster := &countingPoster{}
	r := newTestRunner(t, cfg, poster)

	r.newDriver = func(profile config.Profile) (browser.Driver, error) {
		return nil, errors.New("браузер не установлен")
	}

	assert.Equal(t, 1, r.RunAll())
	assert.Equal(t, 1, poster.posts)
}
