package log

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func typeName(v any) string { return fmt.Sprintf("%T", v) }

func TestPrettyText_WritesKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf,
		WithFormat(FormatText), WithTimeLayout("none"), WithLevel(LevelDebug))

	logger.Debug("rendered",
		slog.String("name", "shell"),
		slog.Int("count", 3),
		slog.Bool("ok", true),
		slog.Any("err", errors.New("boom")),
	)

	out := strings.TrimSpace(buf.String())
	want := "level=debug msg=rendered name=shell count=3 ok=true err=boom"

	if out != want {
		t.Errorf("got  %q\nwant %q", out, want)
	}
}

func TestPrettyText_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout("none"))

	logger.With(slog.String("run", "r1")).WithGroup("node").
		Info("bound", slog.String("type", "Property"))

	out := buf.String()
	for _, s := range []string{"run=r1", "node.type=Property"} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in %q", s, out)
		}
	}
}

func TestPrettyJSON_IndentsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none"))

	logger.Warn("truncated", slog.Int("dropped", 2))

	want := "{\n  level: warn,\n  msg: truncated,\n  dropped: 2\n}\n"
	if buf.String() != want {
		t.Errorf("got  %q\nwant %q", buf.String(), want)
	}
}
