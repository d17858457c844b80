// Package logger builds the zerolog logger every Lambda writes to CloudWatch.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"devagram/internal/auth"
)

// New returns a JSON logger at the given level. Unknown levels fall back to info.
func New(service, level string) zerolog.Logger {
	return NewWithWriter(os.Stdout, service, level)
}

func NewWithWriter(w io.Writer, service, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// ForRequest enriches base with the request correlation fields.
func ForRequest(base zerolog.Logger, req events.APIGatewayV2HTTPRequest) zerolog.Logger {
	ctx := base.With().
		Str("request_id", req.RequestContext.RequestID).
		Str("route", req.RouteKey)
	if sub := auth.UserID(req); sub != "" {
		ctx = ctx.Str("user_id", sub)
	}
	return ctx.Logger()
}
