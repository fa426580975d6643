// Package cli contains the command line interface for docxform.
//
// # Usage
//
//	docxform [flags] <command> [args]
//
// The default command is transform:
//
//	docxform -c nameplate.json -i plant.amlx -D assetId=urn:acme:pump:1
//
// Relative mapping names are looked up in the working directory, then in the
// "mappings" subdirectory of the configuration directory, then along the
// directories of $DOCXFORM_PATH.
//
// # Configuration
//
// Flag defaults are read from config.json and config.yaml in the
// configuration directory (~/.config/docxform on Linux). The YAML file holds
// flag values under the top-level "config" key and may be generated with the
// init command:
//
//	config:
//	  log-level: debug
//	  log-format: text
//
// Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/docxform/pprof)
package cli
