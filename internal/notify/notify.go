// Package notify отправляет уведомления в Slack: сводку запуска в
// info-канал и алерты об ошибках (с ограничением частоты) в канал ошибок.
package notify

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"mercariBot/internal/config"
	"mercariBot/internal/footprint"
	"mercariBot/internal/logger"
	"mercariBot/internal/sanitizer"
)

// Сообщения длиннее этого числа строк режутся на несколько постов.
const lineSplit = 20

// Poster — используемая часть Slack-клиента; в тестах подменяется.
type Poster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
	UploadFileV2(params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

type Notifier struct {
	client        Poster // nil — уведомления отключены
	from          string
	infoChannel   string
	errorChannel  config.Channel
	intervalMin   int
	footprintPath string
	sanitizer     *sanitizer.DataSanitizer
	log           *logger.Zap

	mu   sync.Mutex
	hist []string // история сообщений об ошибках, для тестов
}

func New(cfg *config.Cfg, log *logger.Zap) *Notifier {
	n := &Notifier{
		footprintPath: cfg.Data.FootprintPath(),
		sanitizer:     sanitizer.New(),
		log:           log,
	}

	if cfg.Slack == nil {
		return n
	}

	n.client = slack.New(cfg.Slack.BotToken)
	n.from = cfg.Slack.From
	if cfg.Slack.Info != nil {
		n.infoChannel = cfg.Slack.Info.Channel.Name
	}
	if cfg.Slack.Error != nil {
		n.errorChannel = cfg.Slack.Error.Channel
		n.intervalMin = cfg.Slack.Error.IntervalMin
	}

	return n
}

// NewWithClient собирает Notifier поверх готового клиента. Используется в
// тестах, чтобы подставить поддельный Poster.
func NewWithClient(client Poster, from string, errorChannel config.Channel, intervalMin int, footprintPath string, log *logger.Zap) *Notifier {
	return &Notifier{
		client:        client,
		from:          from,
		errorChannel:  errorChannel,
		intervalMin:   intervalMin,
		footprintPath: footprintPath,
		sanitizer:     sanitizer.New(),
		log:           log,
	}
}

// Info отправляет сообщение в info-канал без ограничения частоты.
func (n *Notifier) Info(name, message string) {
	if n.client == nil || n.infoChannel == "" {
		return
	}
	n.splitSend(n.infoChannel, "Info: "+name, message)
}

// Error отправляет алерт об ошибке. Подряд идущие ошибки в пределах
// настроенного интервала подавляются по файлу-отметке.
func (n *Notifier) Error(message string) {
	n.ErrorWithImage(message, nil)
}

// ErrorWithImage — то же, что Error, плюс один скриншот в канал ошибок.
// На один пропущенный лимитером алерт приходится не более одной загрузки.
func (n *Notifier) ErrorWithImage(message string, image []byte) {
	n.histAdd(message)

	if n.client == nil {
		return
	}

	if !n.intervalCheck() {
		n.log.Warn("Алерт подавлен: интервал ещё не истёк")
		return
	}

	title := "Error: " + n.from
	clean := n.sanitizer.Sanitize(message)
	n.splitSend(n.errorChannel.Name, title, clean)

	if image != nil && n.errorChannel.ID != "" {
		params := slack.UploadFileV2Parameters{
			Channel:        n.errorChannel.ID,
			Reader:         bytes.NewReader(image),
			Filename:       "error.png",
			FileSize:       len(image),
			Title:          title,
			InitialComment: "Скриншот в момент ошибки",
		}
		if _, err := n.client.UploadFileV2(params); err != nil {
			n.log.Warn("Не удалось загрузить скриншот", zap.Error(err))
		}
	}

	if err := footprint.Update(n.footprintPath); err != nil {
		n.log.Warn("Не удалось обновить отметку алерта", zap.Error(err))
	}
}

func (n *Notifier) intervalCheck() bool {
	return footprint.Elapsed(n.footprintPath) > time.Duration(n.intervalMin)*time.Minute
}

func (n *Notifier) splitSend(channel, title, message string) {
	n.log.Info("Отправляю сообщение в Slack", zap.String("channel", channel))

	lines := strings.Split(message, "\n")
	for i := 0; i < len(lines); i += lineSplit {
		end := i + lineSplit
		if end > len(lines) {
			end = len(lines)
		}
		n.send(channel, title, strings.Join(lines[i:end], "\n"))
	}
}

func (n *Notifier) send(channel, title, message string) {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, message, false, false), nil, nil),
	}

	_, _, err := n.client.PostMessage(channel,
		slack.MsgOptionText(message, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		n.log.Warn("Не удалось отправить сообщение в Slack", zap.Error(err))
	}
}

func (n *Notifier) histAdd(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hist = append(n.hist, message)
}

// Hist возвращает копию истории сообщений об ошибках.
func (n *Notifier) Hist() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.hist))
	copy(out, n.hist)
	return out
}

func (n *Notifier) HistClear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hist = nil
}
