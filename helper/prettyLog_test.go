package helper

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Create PrettyHandler with default options", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		assert.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
		assert.NotNil(t, handler.Handler, "Expected handler to have a non-nil Handler field")
		assert.NotNil(t, handler.l, "Expected handler to have a non-nil logger field")
	})

	t.Run("Create PrettyHandler with custom level and source", func(t *testing.T) {
		var buf bytes.Buffer
		opts := PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{
				AddSource: true,
				Level:     slog.LevelDebug,
			},
		}

		handler := NewPrettyHandler(&buf, opts)

		assert.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	newHandler := func(level slog.Level) (*PrettyHandler, *bytes.Buffer) {
		var buf bytes.Buffer
		opts := PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: level},
		}
		return NewPrettyHandler(&buf, opts), &buf
	}

	t.Run("Handle DEBUG level log", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelDebug)

		record := slog.NewRecord(time.Now(), slog.LevelDebug, "Selecting documents", 0)
		record.AddAttrs(slog.String("source_type", "sfs"))

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "DEBUG:", "Expected output to contain DEBUG level")
		assert.Contains(t, output, "Selecting documents", "Expected output to contain the message")
		assert.Contains(t, output, "source_type", "Expected output to contain attribute key")
		assert.Contains(t, output, "sfs", "Expected output to contain attribute value")
	})

	t.Run("Handle INFO level log", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelInfo)

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "Dokument hämtat", 0)
		record.AddAttrs(slog.Int("chunks", 42))

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "INFO:", "Expected output to contain INFO level")
		assert.Contains(t, output, "Dokument hämtat", "Expected output to contain the message")
		assert.Contains(t, output, "chunks", "Expected output to contain attribute key")
		assert.Contains(t, output, "42", "Expected output to contain attribute value")
	})

	t.Run("Handle WARN level log", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelInfo)

		record := slog.NewRecord(time.Now(), slog.LevelWarn, "Kapitelnumrering avviker", 0)
		record.AddAttrs(slog.String("sfs_nr", "1942:740"))

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "WARN:", "Expected output to contain WARN level")
		assert.Contains(t, output, "Kapitelnumrering avviker", "Expected output to contain the message")
		assert.Contains(t, output, "1942:740", "Expected output to contain attribute value")
	})

	t.Run("Handle ERROR level log", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelInfo)

		record := slog.NewRecord(time.Now(), slog.LevelError, "Indexering misslyckades", 0)
		record.AddAttrs(slog.String("error", "connection refused"))

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "ERROR:", "Expected output to contain ERROR level")
		assert.Contains(t, output, "Indexering misslyckades", "Expected output to contain the message")
		assert.Contains(t, output, "connection refused", "Expected output to contain attribute value")
	})

	t.Run("Handle log with no attributes", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelInfo)

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "Initialized ChunksDBHandler", 0)

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "Initialized ChunksDBHandler", "Expected output to contain the message")
		assert.Contains(t, output, "{}", "Expected output to contain empty JSON object for attributes")
	})

	t.Run("Handle log with multiple attributes", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelInfo)

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "Chunk indexerad", 0)
		record.AddAttrs(
			slog.String("namespace", "sfs::2017:900::0kap::9§::chunk_001"),
			slog.Int("tokens", 180),
			slog.Bool("skipped", false),
		)

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "Chunk indexerad", "Expected output to contain the message")
		assert.Contains(t, output, "sfs::2017:900", "Expected output to contain first attribute value")
		assert.Contains(t, output, "180", "Expected output to contain second attribute value")
		assert.Contains(t, output, "skipped", "Expected output to contain third attribute key")
	})

	t.Run("Handle log formats timestamp correctly", func(t *testing.T) {
		handler, buf := newHandler(slog.LevelInfo)

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "time test", 0)

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		// Timestamp should be in format [15:04:05.000]
		assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, buf.String(),
			"Expected output to contain properly formatted timestamp")
	})
}

func TestPrettyHandlerOptions(t *testing.T) {
	t.Run("PrettyHandlerOptions with all fields set", func(t *testing.T) {
		opts := PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{
				AddSource: true,
				Level:     slog.LevelDebug,
				ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
					return a
				},
			},
		}

		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, opts)

		assert.NotNil(t, handler, "Expected handler to be created with all options set")
	})

	t.Run("PrettyHandlerOptions with empty options", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		assert.NotNil(t, handler, "Expected handler to be created with empty options")
	})
}
