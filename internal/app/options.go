package app

import (
	"os"
	"strings"
	"time"

	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/constants"
	"github.com/bazar-next/internal/logger"

	"go.uber.org/zap"
)

const (
	ModeAll    = constants.ModeAll
	ModeAPI    = constants.ModeAPI
	ModeWorker = constants.ModeWorker
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	opts.Mode = strings.ToLower(strings.TrimSpace(opts.Mode))
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
