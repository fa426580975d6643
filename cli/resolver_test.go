package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	val, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", name, err)
	}

	return val
}

func TestResolve_ReturnsNamespaceValues(t *testing.T) {
	t.Parallel()

	const config = `
config:
  log_level: debug
  log-format: text
  indent: 4
  ratio: 0.5
  schema: [a.yaml, b.yaml]
  log:
    pretty: false
other:
  foo: bar
`

	r, err := resolve("config")(strings.NewReader(config))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log_level", "debug"},
		{"log-format", "text"},
		{"indent", "4"},
		{"ratio", "0.5"},
		{"schema", "a.yaml,b.yaml"},
		{"log-pretty", false},
		{"foo", nil},
	}

	for _, tt := range tests {
		if got := resolveFlag(t, r, tt.flag); got != tt.want {
			t.Errorf("Resolve(%q) = %#v, want %#v", tt.flag, got, tt.want)
		}
	}
}

func TestResolve_MissingNamespace(t *testing.T) {
	t.Parallel()

	r, err := resolve("missing")(strings.NewReader(`existing: {foo: bar}`))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if val := resolveFlag(t, r, "foo"); val != nil {
		t.Errorf("expected nil value for missing namespace, got %v", val)
	}
}

func TestResolve_InvalidYAMLConfiguresNothing(t *testing.T) {
	t.Parallel()

	r, err := resolve("config")(strings.NewReader("config: [unterminated"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if val := resolveFlag(t, r, "config"); val != nil {
		t.Errorf("expected nil value, got %v", val)
	}
}

func TestResolve_ReadError(t *testing.T) {
	t.Parallel()

	_, err := resolve("config")(errorReader{errTest})
	if !errors.Is(err, errTest) {
		t.Errorf("expected read error, got %v", err)
	}
}

var errTest = errors.New("read failed")

// errorReader is a reader that always returns an error.
type errorReader struct{ err error }

func (e errorReader) Read([]byte) (int, error) { return 0, e.err }

func TestLogConfigScan(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		level  logLevel
		format logFormat
		pretty bool
		caller bool
	}{
		{
			name:   "separate_values",
			args:   []string{"transform", "--log-level", "debug", "--log-format", "json"},
			level:  "debug",
			format: "json",
			pretty: true,
		},
		{
			name:   "assigned_values",
			args:   []string{"--log-level=warn", "--no-log-pretty", "--log-caller"},
			level:  "warn",
			caller: true,
		},
		{
			name:   "assigned_booleans",
			args:   []string{"--log-pretty=false", "--no-log-caller=false"},
			caller: true,
		},
		{
			name:   "unrelated_flags",
			args:   []string{"--mapping", "--log-level", "-c", "x.json"},
			pretty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := logConfig{Pretty: true}
			f.scan(tt.args)

			if f.Level != tt.level || f.Format != tt.format {
				t.Errorf("level, format = %q, %q, want %q, %q", f.Level, f.Format, tt.level, tt.format)
			}

			if f.Pretty != tt.pretty || f.Caller != tt.caller {
				t.Errorf("pretty, caller = %v, %v, want %v, %v", f.Pretty, f.Caller, tt.pretty, tt.caller)
			}
		})
	}
}
