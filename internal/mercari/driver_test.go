package mercari

import (
	"fmt"
	"time"

	"mercariBot/internal/browser"
)

// fakeDriver — управляемая подделка browser.Driver для тестов.
// Текст, атрибуты и наличие элементов задаются картами по XPath.
type fakeDriver struct {
	texts  map[string]string
	attrs  map[string]string // ключ: xpath + "@" + имя атрибута
	exists map[string]bool
	counts map[string]int

	existsFn func(xpath string) bool // если задан, имеет приоритет над exists

	url string

	waitErrs  map[string][]error // очередь ошибок WaitVisible по xpath
	titleErrs []error            // очередь ошибок WaitTitleContains

	fills       []string // xpath + "=" + значение
	clicks      []string
	navigations []string
	dumps       []string
	reloads     int
	closed      bool

	waitVisibleCalls map[string]int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		texts:            map[string]string{},
		attrs:            map[string]string{},
		exists:           map[string]bool{},
		counts:           map[string]int{},
		waitErrs:         map[string][]error{},
		waitVisibleCalls: map[string]int{},
	}
}

var _ browser.Driver = (*fakeDriver)(nil)

func (f *fakeDriver) Launch() error { return nil }

func (f *fakeDriver) Navigate(url string) error {
	f.navigations = append(f.navigations, url)
	f.url = url
	return nil
}

func (f *fakeDriver) Reload() error {
	f.reloads++
	return nil
}

func (f *fakeDriver) Back() error { return nil }

func (f *fakeDriver) URL() string { return f.url }

func (f *fakeDriver) Content() (string, error) { return "<html></html>", nil }

func (f *fakeDriver) Screenshot() ([]byte, error) { return []byte("png"), nil }

func (f *fakeDriver) Evaluate(script string) (any, error) { return nil, nil }

func (f *fakeDriver) ClickXPath(xpath string, wait bool, warnIfMissing bool) (bool, error) {
	if present, ok := f.exists[xpath]; ok && !present {
		return false, nil
	}
	f.clicks = append(f.clicks, xpath)
	return true, nil
}

func (f *fakeDriver) FillXPath(xpath, value string) error {
	f.fills = append(f.fills, xpath+"="+value)
	return nil
}

func (f *fakeDriver) XPathExists(xpath string) bool {
	if f.existsFn != nil {
		return f.existsFn(xpath)
	}
	return f.exists[xpath]
}

func (f *fakeDriver) IsDisplayed(xpath string) bool { return f.exists[xpath] }

func (f *fakeDriver) CountXPath(xpath string) int { return f.counts[xpath] }

func (f *fakeDriver) TextOf(xpath string) (string, error) {
	if text, ok := f.texts[xpath]; ok {
		return text, nil
	}
	return "", fmt.Errorf("элемент не найден: %s", xpath)
}

func (f *fakeDriver) AttrOf(xpath, name string) (string, error) {
	if value, ok := f.attrs[xpath+"@"+name]; ok {
		return value, nil
	}
	return "", fmt.Errorf("элемент не найден: %s", xpath)
}

func (f *fakeDriver) ScrollTo(x, y int) error { return nil }

func (f *fakeDriver) ScrollToElement(xpath string) error { return nil }

func (f *fakeDriver) WaitVisible(xpath string) error {
	f.waitVisibleCalls[xpath]++
	if queue := f.waitErrs[xpath]; len(queue) > 0 {
		err := queue[0]
		f.waitErrs[xpath] = queue[1:]
		return err
	}
	return nil
}

func (f *fakeDriver) WaitClickable(xpath string) error { return f.WaitVisible(xpath) }

func (f *fakeDriver) WaitTitleContains(text string) error {
	if len(f.titleErrs) > 0 {
		err := f.titleErrs[0]
		f.titleErrs = f.titleErrs[1:]
		return err
	}
	return nil
}

func (f *fakeDriver) WaitPatiently(cond func() error) error {
	err := cond()
	if err == nil || !browser.IsTimeout(err) {
		return err
	}
	f.reloads++
	return cond()
}

func (f *fakeDriver) RandomSleep(base time.Duration) {}

func (f *fakeDriver) DumpPage(dumpPath, origin string) error {
	f.dumps = append(f.dumps, origin)
	return nil
}

func (f *fakeDriver) LogMemoryUsage() {}

func (f *fakeDriver) Close() error {
	f.closed = true
	return nil
}
