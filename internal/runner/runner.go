// Package runner последовательно обрабатывает профили аккаунтов и
// локализует сбои: ошибка одного профиля не мешает остальным.
package runner

import (
	"go.uber.org/zap"

	"mercariBot/internal/browser"
	"mercariBot/internal/challenge"
	"mercariBot/internal/config"
	"mercariBot/internal/history"
	"mercariBot/internal/logger"
	"mercariBot/internal/mercari"
	"mercariBot/internal/notify"
)

const dumpKeepDays = 1

type Runner struct {
	cfg      *config.Cfg
	log      *logger.Zap
	notifier *notify.Notifier
	resolver challenge.Resolver
	repo     *history.Repository
	mode     mercari.Mode

	// newDriver подменяется в тестах
	newDriver func(profile config.Profile) (browser.Driver, error)
}

func New(cfg *config.Cfg, log *logger.Zap, notifier *notify.Notifier, resolver challenge.Resolver, repo *history.Repository, mode mercari.Mode) *Runner {
	r := &Runner{
		cfg:      cfg,
		log:      log,
		notifier: notifier,
		resolver: resolver,
		repo:     repo,
		mode:     mode,
	}
	r.newDriver = r.launchDriver
	return r
}

func (r *Runner) launchDriver(profile config.Profile) (browser.Driver, error) {
	drv := browser.New(browser.Config{
		Headless:     r.cfg.Browser.Headless,
		UserDataDir:  r.cfg.Data.BrowserDataPath(profile.Name),
		BrowsersPath: r.cfg.Browser.BrowsersPath,
		Display:      r.cfg.Browser.Display,
	}, r.log)

	if err := drv.Launch(); err != nil {
		return nil, err
	}
	return drv, nil
}

// RunAll обрабатывает профили строго по одному — каждый владеет своим
// каталогом браузера и общим лимитером алертов. Возвращает число
// профилей, завершившихся с ошибкой (код выхода процесса).
func (r *Runner) RunAll() int {
	failed := 0
	for _, profile := range r.cfg.Profiles {
		if err := r.runProfile(profile); err != nil {
			failed++
		}
	}
	return failed
}

func (r *Runner) runProfile(profile config.Profile) error {
	r.log.Info("Обрабатываю профиль", zap.String("profile", profile.Name))

	drv, err := r.newDriver(profile)
	if err != nil {
		r.log.Error("Не удалось запустить браузер", zap.Error(err))
		r.notifier.Error("Не удалось запустить браузер: " + err.Error())
		return err
	}
	// Браузер закрывается и при успехе, и при ошибке
	defer func() {
		if err := drv.Close(); err != nil {
			r.log.Warn("Ошибка закрытия браузера", zap.Error(err))
		}
	}()

	sess := mercari.NewSession(drv, r.resolver, profile, r.cfg.Data.DumpPath(), r.log)
	engine := mercari.NewEngine(r.repo, r.log)

	err = func() error {
		if err := sess.Warmup(); err != nil {
			return err
		}
		if err := sess.Login(); err != nil {
			return err
		}
		if err := sess.IterItemsOnDisplay(profile, r.mode, []mercari.ItemFunc{engine.ExecuteItem}); err != nil {
			return err
		}
		drv.LogMemoryUsage()
		return nil
	}()

	if err != nil {
		r.contain(drv, err)
		return err
	}

	r.log.Info("Профиль обработан", zap.String("profile", profile.Name))
	return nil
}

// contain фиксирует диагностику сбоя: URL и ошибку в лог, скриншот и HTML
// на диск, алерт с ограничением частоты в канал ошибок.
func (r *Runner) contain(drv browser.Driver, cause error) {
	r.log.Error("Ошибка обработки профиля",
		zap.String("url", drv.URL()),
		zap.Error(cause))

	image, err := drv.Screenshot()
	if err != nil {
		r.log.Warn("Не удалось снять скриншот для алерта", zap.Error(err))
		image = nil
	}
	r.notifier.ErrorWithImage(cause.Error(), image)

	if err := drv.DumpPage(r.cfg.Data.DumpPath(), "execute"); err != nil {
		r.log.Warn("Не удалось сохранить дамп", zap.Error(err))
	}
	browser.CleanDump(r.cfg.Data.DumpPath(), dumpKeepDays, r.log)
}
