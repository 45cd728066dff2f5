package challenge

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"mercariBot/internal/logger"
)

// Префиксы токена кодируют способ корреляции ответа:
// по ts исходного сообщения либо по id загруженного файла.
const (
	tokenKindTS   = "ts:"
	tokenKindFile = "file:"
)

// SlackAPI — используемая часть Slack-клиента; в тестах подменяется.
type SlackAPI interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
	UploadFileV2(params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
	GetConversationHistory(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	GetConversationReplies(params *slack.GetConversationRepliesParameters) ([]slack.Message, bool, string, error)
}

type SlackResolver struct {
	client    SlackAPI
	channelID string
	log       *logger.Zap

	// подменяются в тестах
	sleep func(time.Duration)
	poll  time.Duration
}

func NewSlackResolver(client SlackAPI, channelID string, log *logger.Zap) *SlackResolver {
	return &SlackResolver{
		client:    client,
		channelID: channelID,
		log:       log,
		sleep:     time.Sleep,
		poll:      pollInterval,
	}
}

func (r *SlackResolver) Request(title, message string) (string, error) {
	r.log.Info("CAPTCHA: отправляю запрос", zap.String("title", title))

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, message, false, false), nil, nil),
	}

	_, ts, err := r.client.PostMessage(r.channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return "", fmt.Errorf("не удалось отправить запрос: %w", err)
	}

	return tokenKindTS + ts, nil
}

func (r *SlackResolver) RequestImage(title string, image []byte, message string) (string, error) {
	r.log.Info("CAPTCHA: отправляю запрос с изображением", zap.String("title", title))

	summary, err := r.client.UploadFileV2(slack.UploadFileV2Parameters{
		Channel:        r.channelID,
		Reader:         bytes.NewReader(image),
		Filename:       "challenge.png",
		FileSize:       len(image),
		Title:          title,
		InitialComment: message,
	})
	if err != nil {
		return "", fmt.Errorf("не удалось загрузить изображение: %w", err)
	}

	return tokenKindFile + summary.ID, nil
}

// AwaitResponse опрашивает недавнюю историю канала и ищет тред,
// привязанный к исходному сообщению. Ответом считается последняя
// реплика треда.
func (r *SlackResolver) AwaitResponse(token string, timeout time.Duration) (string, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)

	r.sleep(r.poll)
	for {
		threadTS, err := r.findThread(token)
		if err != nil {
			r.log.Warn("CAPTCHA: ошибка опроса истории", zap.Error(err))
		}

		if threadTS != "" {
			replies, _, _, err := r.client.GetConversationReplies(&slack.GetConversationRepliesParameters{
				ChannelID: r.channelID,
				Timestamp: threadTS,
			})
			if err != nil {
				return "", fmt.Errorf("не удалось получить ответы треда: %w", err)
			}
			if len(replies) > 1 {
				return strings.TrimSpace(replies[len(replies)-1].Text), nil
			}
		}

		if time.Now().After(deadline) {
			return "", ErrNoResponse
		}
		r.sleep(r.poll)
	}
}

func (r *SlackResolver) findThread(token string) (string, error) {
	resp, err := r.client.GetConversationHistory(&slack.GetConversationHistoryParameters{
		ChannelID: r.channelID,
		Limit:     3,
	})
	if err != nil {
		return "", err
	}

	for _, message := range resp.Messages {
		if message.ThreadTimestamp == "" {
			continue
		}
		if matchToken(message, token) {
			return message.ThreadTimestamp, nil
		}
	}
	return "", nil
}

func matchToken(message slack.Message, token string) bool {
	switch {
	case strings.HasPrefix(token, tokenKindTS):
		return message.Timestamp == strings.TrimPrefix(token, tokenKindTS)
	case strings.HasPrefix(token, tokenKindFile):
		return len(message.Files) > 0 &&
			message.Files[0].ID == strings.TrimPrefix(token, tokenKindFile)
	default:
		return false
	}
}
