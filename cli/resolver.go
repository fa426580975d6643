package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag values from
// the mapping named name at the top level of a YAML config file.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve("config"), "/path/to/config.yaml")
//
// Keys are flag names. Hyphens and underscores are interchangeable, so
// "log-level" may be written "log_level". Nested mappings are flattened
// with hyphens, so the following sets --log-level and --log-pretty:
//
//	config:
//	  log:
//	    level: debug
//	    pretty: false
//	  mapping: nameplate.json
//
// Command-line flags override config file values. A file that cannot be
// parsed, or lacks the named mapping, configures nothing.
func resolve(name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return config{}, nil
		}

		ns, ok := doc[name].(map[string]any)
		if !ok {
			return config{}, nil
		}

		conf := config{}
		conf.flatten("", ns)

		return conf, nil
	}
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := c[key(flag.Name)]; ok {
		return value, nil
	}

	return nil, nil
}

// flatten stores the scalars of m under their hyphen-joined paths. Kong
// parses numbers from strings, so numbers are stored formatted.
func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		k = prefix + key(k)

		switch t := v.(type) {
		case map[string]any:
			c.flatten(k+"-", t)
		case uint64:
			c[k] = strconv.FormatUint(t, 10)
		case int64:
			c[k] = strconv.FormatInt(t, 10)
		case float64:
			c[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case []any:
			items := make([]string, 0, len(t))
			for _, e := range t {
				items = append(items, scalar(e))
			}

			c[k] = strings.Join(items, ",")
		default:
			c[k] = t
		}
	}
}

// key normalizes a flag name to its hyphenated form.
func key(name string) string { return strings.ReplaceAll(name, "_", "-") }

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case uint64:
		return strconv.FormatUint(t, 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
