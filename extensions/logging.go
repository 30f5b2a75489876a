package extensions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	lazyslot "github.com/lazyslot/lazyslot-go"
)

// LoggingExtension logs slot computations through slog.
//
// Usage:
//
//	// Human-readable formatted output
//	handler := extensions.NewHumanHandler(os.Stdout, slog.LevelInfo)
//	ext := extensions.NewLoggingExtension(handler)
//
//	// Structured JSON logging
//	ext := extensions.NewLoggingExtension(slog.NewJSONHandler(os.Stdout, nil))
//
//	// Silent (for testing)
//	ext := extensions.NewLoggingExtension(extensions.NewSilentHandler())
type LoggingExtension struct {
	lazyslot.BaseExtension
	logger *slog.Logger
}

// NewLoggingExtension creates a new logging extension.
// logHandler: slog.Handler for output (HumanHandler, JSON, or any other)
func NewLoggingExtension(logHandler slog.Handler) *LoggingExtension {
	return &LoggingExtension{
		BaseExtension: lazyslot.NewBaseExtension("logging"),
		logger:        slog.New(logHandler),
	}
}

// Wrap logs computation start, outcome and duration
func (e *LoggingExtension) Wrap(ctx context.Context, next func() (any, error), op *lazyslot.Operation) (any, error) {
	e.logger.Info("computing lazy attribute",
		"owner", op.Owner.Name(),
		"attr", op.Attr,
	)

	start := time.Now()
	result, err := next()
	duration := time.Since(start)

	if err != nil {
		e.logger.Error("lazy attribute failed",
			"owner", op.Owner.Name(),
			"attr", op.Attr,
			"duration", duration,
			"error", err.Error(),
		)
	} else {
		e.logger.Info("lazy attribute resolved",
			"owner", op.Owner.Name(),
			"attr", op.Attr,
			"duration", duration,
		)
	}

	return result, err
}

// OnForward logs re-entrant reads answered with the forward value
func (e *LoggingExtension) OnForward(op *lazyslot.Operation) {
	e.logger.Debug("forward value returned",
		"owner", op.Owner.Name(),
		"attr", op.Attr,
	)
}

// SilentHandler is a slog.Handler that discards all log output.
// Useful for testing when you don't want log output.
type SilentHandler struct{}

// NewSilentHandler creates a new silent log handler
func NewSilentHandler() *SilentHandler {
	return &SilentHandler{}
}

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return false
}

func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error {
	return nil
}

func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *SilentHandler) WithGroup(name string) slog.Handler {
	return h
}

// HumanHandler is a slog.Handler that formats records for human readability,
// one line per record with indented attributes. Multi-line attribute values
// (the drawn resolution trace in particular) are printed verbatim.
type HumanHandler struct {
	writer io.Writer
	level  slog.Level
}

// NewHumanHandler creates a new human-readable log handler
func NewHumanHandler(writer io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{
		writer: writer,
		level:  level,
	}
}

func (h *HumanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *HumanHandler) Handle(ctx context.Context, record slog.Record) error {
	if _, err := fmt.Fprintf(h.writer, "[%s] %s\n", record.Level, record.Message); err != nil {
		return err
	}

	var writeErr error
	record.Attrs(func(a slog.Attr) bool {
		val := a.Value.String()
		if containsNewline(val) {
			_, writeErr = fmt.Fprintf(h.writer, "  %s:\n%s\n", a.Key, val)
		} else {
			_, writeErr = fmt.Fprintf(h.writer, "  %s: %v\n", a.Key, a.Value)
		}
		return writeErr == nil
	})
	return writeErr
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *HumanHandler) WithGroup(name string) slog.Handler {
	return h
}

func containsNewline(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return true
		}
	}
	return false
}
