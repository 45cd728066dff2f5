package challenge

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"mercariBot/internal/logger"
)

// TerminalResolver запрашивает ответ с терминала. Используется только при
// ручном запуске без настроенного Slack; для запусков по расписанию не
// годится.
type TerminalResolver struct {
	in     *bufio.Reader
	out    io.Writer
	log    *logger.Zap
	prompt string
}

func NewTerminalResolver(in io.Reader, out io.Writer, log *logger.Zap) *TerminalResolver {
	return &TerminalResolver{
		in:  bufio.NewReader(in),
		out: out,
		log: log,
	}
}

func (r *TerminalResolver) Request(title, message string) (string, error) {
	r.prompt = message
	return "terminal", nil
}

func (r *TerminalResolver) RequestImage(title string, image []byte, message string) (string, error) {
	r.prompt = message
	return "terminal", nil
}

func (r *TerminalResolver) AwaitResponse(token string, timeout time.Duration) (string, error) {
	fmt.Fprintf(r.out, "%s: ", r.prompt)

	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return "", ErrNoResponse
	}
	return strings.TrimSpace(line), nil
}
