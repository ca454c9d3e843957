// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"github.com/cebtenzzre/npf2html/config"
	"github.com/cebtenzzre/npf2html/convert/html"
	"github.com/cebtenzzre/npf2html/npf"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by convert subcommand
	NoDirs    bool
	Overwrite bool
	CodePage  encoding.Encoding
	// stylesheet with class prefix already matching configuration
	DefaultStyle []byte
	Renderer     html.Renderer

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

// ConvertOptions returns conversion options for the current configuration.
// Renderer is shared, it is stateless.
func (e *LocalEnv) ConvertOptions(log *zap.Logger) *html.Options {
	opts := &html.Options{Renderer: e.Renderer, Log: log}
	if e.Cfg != nil {
		opts.Prefix = e.Cfg.Document.ClassPrefix
		if url := e.Cfg.Document.Ask.AvatarURL; url != "" {
			opts.AskingAvatar = []npf.VisualMedia{{Media: npf.Media{URL: url}}}
		}
	}
	return opts
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
