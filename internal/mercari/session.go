package mercari

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"mercariBot/internal/browser"
	"mercariBot/internal/challenge"
	"mercariBot/internal/config"
	"mercariBot/internal/logger"
)

const (
	loginURL = "https://jp.mercari.com"

	loginRetryCount    = 1
	loginRetryCooldown = 10 * time.Second
)

const (
	xpathTopMenu       = `//div[@class="merNavigationTopMenu"]`
	xpathAccountButton = `//button[@data-testid="account-button"]`
	xpathStartButton   = `//button[contains(text(), "はじめる")]`
	xpathLoginButton   = `//button[contains(text(), "ログイン")]`
	xpathLoginHeading  = `//h1[contains(text(), "ログイン")]`
	xpathUserInput     = `//input[@name="emailOrPhone"]`
	xpathPassInput     = `//input[@name="password"]`
	xpathRecaptcha     = `//div[@id="recaptchaV2"]`
	xpathSMSHeading    = `//h1[contains(text(), "電話番号の確認")]`
	xpathSMSCodeInput  = `//input[@name="code"]`
	xpathSMSSubmit     = `//button[contains(text(), "認証して完了する")]`
)

// Session владеет браузером на время обработки одного профиля.
// Браузер не разделяется между профилями и не переживает запуск.
type Session struct {
	drv      browser.Driver
	resolver challenge.Resolver
	profile  config.Profile
	dumpPath string
	state    State
	log      *logger.Zap

	sleep func(time.Duration) // подменяется в тестах
}

func NewSession(drv browser.Driver, resolver challenge.Resolver, profile config.Profile, dumpPath string, log *logger.Zap) *Session {
	return &Session{
		drv:      drv,
		resolver: resolver,
		profile:  profile,
		dumpPath: dumpPath,
		state:    StateNew,
		log:      log,
		sleep:    time.Sleep,
	}
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Driver() browser.Driver {
	return s.drv
}

// Warmup делает холостой заход на сайт с обновлением страницы.
// NOTE: в начале автоматической сессии ошибки случаются заметно чаще,
// поэтому сайт прогревается до полезной работы.
func (s *Session) Warmup() error {
	s.log.Info("Выполняю прогрев")

	if err := s.drv.Navigate(loginURL); err != nil {
		return err
	}
	s.sleep(3 * time.Second)
	if err := s.drv.Reload(); err != nil {
		return err
	}
	s.sleep(3 * time.Second)

	s.state = StateWarmedUp
	return nil
}

// Login выполняет вход. Вся последовательность повторяется не больше
// одного раза: перед повтором сохраняется дамп страницы и выдерживается
// пауза. Повторная неудача фатальна для профиля.
func (s *Session) Login() error {
	var lastErr error
	for attempt := 0; attempt <= loginRetryCount; attempt++ {
		if attempt > 0 {
			s.log.Error("Повторяю вход", zap.Error(lastErr))
			s.sleep(loginRetryCooldown)
		}

		err := s.loginImpl()
		if err == nil {
			s.state = StateAuthenticated
			return nil
		}

		lastErr = err
		s.log.Error("Вход не удался", zap.Error(err))
		if dumpErr := s.drv.DumpPage(s.dumpPath, "login"); dumpErr != nil {
			s.log.Warn("Не удалось сохранить дамп", zap.Error(dumpErr))
		}
	}

	s.state = StateLoginFailed
	return fmt.Errorf("вход не выполнен: %w", lastErr)
}

func (s *Session) loginImpl() error {
	s.log.Info("Выполняю вход", zap.String("profile", s.profile.Name))
	s.state = StateLoginStarted

	if err := s.drv.Navigate(loginURL); err != nil {
		return err
	}
	if err := s.drv.WaitVisible(xpathTopMenu); err != nil {
		return err
	}
	s.drv.RandomSleep(time.Second)

	s.drv.ClickXPath(xpathStartButton, false, false)
	s.sleep(time.Second)

	// Персистентный профиль браузера часто уже содержит живую сессию
	if s.drv.XPathExists(xpathAccountButton) {
		s.log.Info("Уже выполнен вход")
		return nil
	}

	if _, err := s.drv.ClickXPath(xpathLoginButton, true, true); err != nil {
		return err
	}
	if err := s.drv.WaitVisible(xpathLoginHeading); err != nil {
		return err
	}

	if err := s.drv.FillXPath(xpathUserInput, s.profile.User); err != nil {
		return err
	}
	if err := s.drv.FillXPath(xpathPassInput, s.profile.Pass); err != nil {
		return err
	}
	if _, err := s.drv.ClickXPath(xpathLoginButton, true, true); err != nil {
		return err
	}

	s.sleep(2 * time.Second)
	if s.drv.XPathExists(xpathRecaptcha) {
		if err := s.resolveCaptcha(); err != nil {
			return err
		}
	}

	if err := s.resolveSMSCode(); err != nil {
		return err
	}

	if err := s.drv.Navigate(loginURL); err != nil {
		return err
	}
	s.drv.RandomSleep(time.Second)
	if err := s.drv.WaitVisible(xpathTopMenu); err != nil {
		return err
	}
	if err := s.drv.WaitClickable(xpathAccountButton); err != nil {
		return err
	}

	s.log.Info("Вход выполнен")
	return nil
}

// resolveCaptcha пересылает скриншот капчи оператору и после его ответа
// повторяет отправку формы входа.
func (s *Session) resolveCaptcha() error {
	s.log.Warn("Запрошена капча")
	s.state = StateChallengePending

	image, err := s.drv.Screenshot()
	if err != nil {
		return err
	}

	token, err := s.resolver.RequestImage("CAPTCHA", image, "Пройдите капчу в браузере и ответьте в треде")
	if err != nil {
		return err
	}
	if _, err := s.resolver.AwaitResponse(token, challenge.DefaultTimeout); err != nil {
		return fmt.Errorf("капча не решена: %w", err)
	}

	s.log.Warn("Капча пройдена")
	_, err = s.drv.ClickXPath(xpathLoginButton, true, true)
	return err
}

// resolveSMSCode ждёт появления запроса кода подтверждения; если запрос не
// показан, вход продолжается без него.
func (s *Session) resolveSMSCode() error {
	if err := s.drv.WaitVisible(xpathSMSHeading); err != nil {
		if browser.IsTimeout(err) {
			return nil
		}
		return err
	}

	s.log.Info("Обрабатываю код подтверждения")
	s.state = StateChallengePending

	token, err := s.resolver.Request("CAPTCHA", "Введите код подтверждения из SMS")
	if err != nil {
		return err
	}

	code, err := s.resolver.AwaitResponse(token, challenge.DefaultTimeout)
	if err != nil {
		return fmt.Errorf("код подтверждения не получен: %w", err)
	}

	if err := s.drv.FillXPath(xpathSMSCodeInput, code); err != nil {
		return err
	}
	if _, err := s.drv.ClickXPath(xpathSMSSubmit, true, true); err != nil {
		return err
	}

	s.sleep(5 * time.Second)
	return nil
}
