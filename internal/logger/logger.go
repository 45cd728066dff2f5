package logger

import (
	"bytes"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Zap struct {
	*zap.Logger
}

func New(env, level string) (*Zap, error) {
	core, err := buildCore(env, level, nil)
	if err != nil {
		return nil, err
	}
	return &Zap{zap.New(core)}, nil
}

// NewWithCapture дополнительно накапливает весь лог выполнения в памяти,
// чтобы по завершении отправить его в info-канал.
func NewWithCapture(env, level string) (*Zap, *Capture, error) {
	capture := &Capture{}
	core, err := buildCore(env, level, capture)
	if err != nil {
		return nil, nil, err
	}
	return &Zap{zap.New(core)}, capture, nil
}

func buildCore(env, level string, capture *Capture) (zapcore.Core, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var encoderCfg zapcore.EncoderConfig
	if env == "prod" {
		encoderCfg = zap.NewProductionEncoderConfig()
	} else {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	}
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	encoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), lvl)

	if capture != nil {
		core = zapcore.NewTee(core, zapcore.NewCore(encoder, capture, lvl))
	}

	return core, nil
}

// Capture — потокобезопасный буфер для текста лога текущего запуска.
type Capture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *Capture) Sync() error {
	return nil
}

func (c *Capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}
