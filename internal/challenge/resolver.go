// Package challenge передаёт внеполосные проверки (капча, SMS-код)
// оператору через Slack и ждёт его ответа в треде.
package challenge

import (
	"errors"
	"time"
)

const (
	// DefaultTimeout — сколько ждать ответа оператора.
	DefaultTimeout = 300 * time.Second

	pollInterval = 5 * time.Second
)

// ErrNoResponse означает, что оператор не ответил за отведённое время.
// Вызывающий код обязан счесть вход неуспешным, а не продолжать с пустым
// кодом.
var ErrNoResponse = errors.New("оператор не ответил на запрос")

type Resolver interface {
	// Request публикует текстовый запрос и возвращает корреляционный токен.
	Request(title, message string) (string, error)
	// RequestImage публикует запрос с изображением (скриншот капчи).
	RequestImage(title string, image []byte, message string) (string, error)
	// AwaitResponse блокируется до ответа оператора или таймаута.
	AwaitResponse(token string, timeout time.Duration) (string, error)
}
