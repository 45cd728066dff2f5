// Package config загружает и валидирует конфигурацию бота.
// Профили, политика скидок и настройки Slack читаются из YAML,
// секреты и параметры браузера можно переопределить через .env.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Cfg struct {
	Profiles []Profile `yaml:"profile"`
	Slack    *Slack    `yaml:"slack"`
	Database *Database `yaml:"database"`
	Data     Data      `yaml:"data"`
	Logger   Logger    `yaml:"logger"`
	Browser  Browser   `yaml:"browser"`
}

// Profile — один аккаунт площадки со своей политикой скидок.
type Profile struct {
	Name     string         `yaml:"name"`
	User     string         `yaml:"user"`
	Pass     string         `yaml:"pass"`
	Interval Interval       `yaml:"interval"`
	Discount []DiscountTier `yaml:"discount"`
}

type Interval struct {
	Hour int `yaml:"hour"`
}

// DiscountTier — ступень скидки: при каком количестве лайков и от какой
// цены снижать цену на Step иен.
type DiscountTier struct {
	FavoriteCount int `yaml:"favorite_count"`
	Threshold     int `yaml:"threshold"`
	Step          int `yaml:"step"`
}

type Slack struct {
	BotToken string        `yaml:"bot_token"`
	From     string        `yaml:"from"`
	Captcha  *ChannelRef   `yaml:"captcha"`
	Error    *ErrorChannel `yaml:"error"`
	Info     *ChannelRef   `yaml:"info"`
}

type Channel struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

type ChannelRef struct {
	Channel Channel `yaml:"channel"`
}

type ErrorChannel struct {
	Channel     Channel `yaml:"channel"`
	IntervalMin int     `yaml:"interval_min"`
}

type Database struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"pass"`
}

type Data struct {
	Path string `yaml:"path"`
}

// DumpPath — каталог диагностических дампов (скриншот + HTML).
func (d Data) DumpPath() string {
	return filepath.Join(d.Path, "debug")
}

// FootprintPath — файл отметки времени последнего алерта об ошибке.
func (d Data) FootprintPath() string {
	return filepath.Join(d.Path, "error_notify")
}

// BrowserDataPath — каталог персистентного профиля браузера.
func (d Data) BrowserDataPath(profileName string) string {
	return filepath.Join(d.Path, "firefox", profileName)
}

type Logger struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

type Browser struct {
	Display      string `yaml:"display"`
	Headless     bool   `yaml:"headless"`
	BrowsersPath string `yaml:"browsers_path"`
}

const defaultErrorIntervalMin = 10

func Load(path string) (*Cfg, error) {
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфигурацию: %w", err)
	}

	cfg := &Cfg{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("не удалось разобрать конфигурацию: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Cfg) {
	if cfg.Slack != nil {
		cfg.Slack.BotToken = env("SLACK_BOT_TOKEN", cfg.Slack.BotToken)
	}
	if cfg.Database != nil {
		cfg.Database.Host = env("DB_HOST", cfg.Database.Host)
		cfg.Database.Port = env("DB_PORT", cfg.Database.Port)
		cfg.Database.Name = env("DB_NAME", cfg.Database.Name)
		cfg.Database.User = env("DB_USER", cfg.Database.User)
		cfg.Database.Password = env("DB_PASS", cfg.Database.Password)
	}
	cfg.Browser.Display = env("DISPLAY", cfg.Browser.Display)
	cfg.Browser.BrowsersPath = env("PLAYWRIGHT_BROWSERS_PATH", cfg.Browser.BrowsersPath)
	if v := os.Getenv("PW_HEADLESS"); v != "" {
		cfg.Browser.Headless = envBool("PW_HEADLESS")
	}
}

func applyDefaults(cfg *Cfg) {
	if cfg.Data.Path == "" {
		cfg.Data.Path = "./data"
	}
	if cfg.Logger.Env == "" {
		cfg.Logger.Env = env("ENV", "dev")
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = env("LOG_LEVEL", "info")
	}
	if cfg.Slack != nil && cfg.Slack.Error != nil && cfg.Slack.Error.IntervalMin == 0 {
		cfg.Slack.Error.IntervalMin = defaultErrorIntervalMin
	}
}

func (c *Cfg) Validate() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("не задан ни один профиль")
	}
	for i, p := range c.Profiles {
		if p.Name == "" {
			return fmt.Errorf("профиль %d: не задано имя", i)
		}
		if p.User == "" || p.Pass == "" {
			return fmt.Errorf("профиль %q: не заданы учётные данные", p.Name)
		}
		if p.Interval.Hour < 0 {
			return fmt.Errorf("профиль %q: interval.hour не может быть отрицательным", p.Name)
		}
		for j, tier := range p.Discount {
			if tier.Step <= 0 {
				return fmt.Errorf("профиль %q: ступень %d: step должен быть положительным", p.Name, j)
			}
			if tier.FavoriteCount < 0 || tier.Threshold < 0 {
				return fmt.Errorf("профиль %q: ступень %d: отрицательные пороги недопустимы", p.Name, j)
			}
		}
	}
	if c.Slack != nil {
		if c.Slack.BotToken == "" {
			return fmt.Errorf("slack: не задан bot_token")
		}
		if c.Slack.Error != nil && c.Slack.Error.Channel.Name == "" {
			return fmt.Errorf("slack: не задан канал ошибок")
		}
		if c.Slack.Captcha != nil && c.Slack.Captcha.Channel.ID == "" {
			return fmt.Errorf("slack: не задан id канала капчи")
		}
	}
	if c.Database != nil {
		if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
			return fmt.Errorf("database: не заданы host/name/user")
		}
	}
	return nil
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}
