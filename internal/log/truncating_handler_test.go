package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// TestTruncatingHandler_TruncatesLongValues tests that oversized string
// values are cut and short ones pass through.
func TestTruncatingHandler_TruncatesLongValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		maxLen       int
		value        string
		wantEllipsis bool
	}{
		{
			name:         "short value passes through",
			maxLen:       10,
			value:        "hello",
			wantEllipsis: false,
		},
		{
			name:         "value at limit passes through",
			maxLen:       5,
			value:        "hello",
			wantEllipsis: false,
		},
		{
			name:         "long value is truncated",
			maxLen:       5,
			value:        "hello world",
			wantEllipsis: true,
		},
		{
			name:         "multibyte value is cut on rune boundary",
			maxLen:       3,
			value:        "こんにちは",
			wantEllipsis: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			handler := NewTruncatingHandler(slog.NewTextHandler(&buf, nil), tt.maxLen)
			logger := slog.New(handler)

			logger.Info("test", "content", tt.value)

			out := buf.String()
			if tt.wantEllipsis {
				if !strings.Contains(out, Ellipsis) {
					t.Errorf("output missing ellipsis: %s", out)
				}
				if strings.Contains(out, tt.value) {
					t.Errorf("output contains full value: %s", out)
				}
			} else {
				if !strings.Contains(out, tt.value) {
					t.Errorf("output missing value %q: %s", tt.value, out)
				}
			}
		})
	}
}

// TestTruncatingHandler_NonStringValues tests that non-string attributes
// are passed through untouched.
func TestTruncatingHandler_NonStringValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := NewTruncatingHandler(slog.NewTextHandler(&buf, nil), 4)
	logger := slog.New(handler)

	logger.Info("test", "lines", 1234567890, "ratio", 1.5)

	out := buf.String()
	if !strings.Contains(out, "1234567890") {
		t.Errorf("int attribute was modified: %s", out)
	}
	if !strings.Contains(out, "1.5") {
		t.Errorf("float attribute was modified: %s", out)
	}
}

// TestTruncatingHandler_Groups tests that attributes inside groups are
// truncated recursively.
func TestTruncatingHandler_Groups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := NewTruncatingHandler(slog.NewTextHandler(&buf, nil), 4)
	logger := slog.New(handler)

	logger.Info("test", slog.Group("post", slog.String("content", "abcdefghij")))

	out := buf.String()
	if strings.Contains(out, "abcdefghij") {
		t.Errorf("grouped value was not truncated: %s", out)
	}
	if !strings.Contains(out, Ellipsis) {
		t.Errorf("grouped value missing ellipsis: %s", out)
	}
}

// TestTruncatingHandler_WithAttrs tests that pre-bound attributes are
// truncated.
func TestTruncatingHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := NewTruncatingHandler(slog.NewTextHandler(&buf, nil), 4)
	logger := slog.New(handler).With("dataset", "a-very-long-dataset-name.ndjson")

	logger.Info("test")

	out := buf.String()
	if strings.Contains(out, "a-very-long-dataset-name.ndjson") {
		t.Errorf("bound attribute was not truncated: %s", out)
	}
}

// TestNewLogger tests level selection for the text logger.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("default level suppresses info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Info("hidden")
		logger.Warn("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Errorf("info record logged at default level: %s", out)
		}
		if !strings.Contains(out, "shown") {
			t.Errorf("warn record missing: %s", out)
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)
		logger.Debug("detail")

		if !strings.Contains(buf.String(), "detail") {
			t.Errorf("debug record missing: %s", buf.String())
		}
	})
}

// TestNewJSONLogger tests that the JSON logger emits JSON records.
func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)
	logger.Info("test", "key", "value")

	out := buf.String()
	if !strings.Contains(out, `"msg":"test"`) {
		t.Errorf("output is not JSON formatted: %s", out)
	}
}
