package http

import (
	"context"
	"log/slog"

	"salesboard/internal/middleware/cors"
)

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

func corsConfig(origin string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowedOrigin = origin
	return cfg
}
