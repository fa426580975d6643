package log

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestConfig_Options_SetFields(t *testing.T) {
	c := apply(config{},
		WithLevel(LevelWarn),
		WithFormat(FormatText),
		WithCaller(true),
		WithPretty(false),
	)

	if c.level != LevelWarn {
		t.Errorf("expected level warn, got %v", c.level)
	}
	if c.format != FormatText {
		t.Errorf("expected format text, got %v", c.format)
	}
	if !c.caller {
		t.Error("expected caller enabled")
	}
	if c.pretty {
		t.Error("expected pretty disabled")
	}
	if c.mutex == nil {
		t.Error("expected options to allocate a mutex")
	}
}

func TestConfig_clone_SeparatesMutex(t *testing.T) {
	c := makeConfig(nil)
	d := c.clone(WithLevel(LevelError))

	if c.mutex == d.mutex {
		t.Error("clone shares the mutex of its source")
	}
	if c.level != DefaultLevel || d.level != LevelError {
		t.Errorf("unexpected levels after clone: %v, %v", c.level, d.level)
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LevelInfo + 2, "info+2"},
		{LevelError + 4, "error+4"},
		{LevelTrace - 1, "trace-1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{" info ", LevelInfo},
		{"WARN", LevelWarn},
		{"error", LevelError},
		{"info+2", LevelInfo + 2},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("TEXT") != FormatText {
		t.Error("expected text format")
	}
	if ParseFormat("json") != FormatJSON {
		t.Error("expected json format")
	}
	if ParseFormat("xml") != DefaultFormat {
		t.Error("expected default format for unknown input")
	}
}

func TestLevelsAndFormats_Enumerate(t *testing.T) {
	levels := slices.Collect(Levels())
	if !slices.Equal(levels, []string{"trace", "debug", "info", "warn", "error"}) {
		t.Errorf("unexpected levels: %v", levels)
	}

	formats := slices.Collect(Formats())
	if !slices.Equal(formats, []string{"text", "json"}) {
		t.Errorf("unexpected formats: %v", formats)
	}
}

func TestConfig_formatTime_FormatsTimestamp(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"rfc3339 named layout", "RFC3339", "2023-10-15T14:30:45Z"},
		{"rfc3339 nano named layout", "rfc-3339-nano", "2023-10-15T14:30:45.123456789Z"},
		{"datetime named layout", "DateTime", "2023-10-15 14:30:45"},
		{"custom layout used verbatim", " 2006-01-02 15:04", " 2023-10-15 14:30"},
		{"empty disables", "", ""},
		{"whitespace disables", "   \t  ", ""},
		{"none disables", "none", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := WithTimeLayout(tt.layout)(config{})

			if got := c.formatTime(now); got != tt.want {
				t.Errorf("formatTime(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestConfig_handler_SelectsImplementation(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		prefix string
	}{
		{"pretty text", []Option{WithFormat(FormatText)}, "*log.prettyTextHandler"},
		{"pretty json", []Option{WithFormat(FormatJSON)}, "*log.prettyJSONHandler"},
		{"plain text", []Option{WithFormat(FormatText), WithPretty(false)}, "*slog.TextHandler"},
		{"plain json", []Option{WithFormat(FormatJSON), WithPretty(false)}, "*slog.JSONHandler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := makeConfig(nil, tt.opts...).handler()

			if got := typeName(h); !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("handler type = %s, want %s", got, tt.prefix)
			}
		})
	}
}

func BenchmarkConfig_formatTime(b *testing.B) {
	c := WithTimeLayout("RFC3339Nano")(config{})
	testTime := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.formatTime(testTime)
	}
}
