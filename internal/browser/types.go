package browser

import (
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"mercariBot/internal/logger"
)

// Driver — поверхность браузера, которой пользуются остальные пакеты.
// Любой драйвер автоматизации с таким набором операций взаимозаменяем.
type Driver interface {
	Launch() error
	Navigate(url string) error
	Reload() error
	Back() error
	URL() string
	Content() (string, error)
	Screenshot() ([]byte, error)
	Evaluate(script string) (any, error)

	ClickXPath(xpath string, wait bool, warnIfMissing bool) (bool, error)
	FillXPath(xpath, value string) error
	XPathExists(xpath string) bool
	IsDisplayed(xpath string) bool
	CountXPath(xpath string) int
	TextOf(xpath string) (string, error)
	AttrOf(xpath, name string) (string, error)
	ScrollTo(x, y int) error
	ScrollToElement(xpath string) error

	WaitVisible(xpath string) error
	WaitClickable(xpath string) error
	WaitTitleContains(text string) error
	WaitPatiently(cond func() error) error
	RandomSleep(base time.Duration)

	DumpPage(dumpPath, origin string) error
	LogMemoryUsage()

	Close() error
}

type PlaywrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	cfg     Config
	log     *logger.Zap
	mu      sync.RWMutex
}

type Config struct {
	Headless        bool
	UserDataDir     string
	BrowsersPath    string
	Display         string
	Timeout         time.Duration
	NavigateTimeout time.Duration
}
