// Package cli contains the command line interface for cmf.
//
// # Commands
//
//	cmf compile [--format=text|json|yaml|dump] [--watch] <schema>
//	cmf merge --dest=<schema> --output=<file.csv> [--mode=<mode>] <schema> <data> ...
//	cmf init [--format=yaml|toml|json] [--force]
//	cmf repl [<schema>]
//
// A schema argument is either a path or a name resolved on the schema search
// path: the directories in $CMF_PATH followed by <config>/schema, with or
// without the ".cmf" extension.
//
// # Configuration
//
// Flag defaults are read from config.json, config.yaml, config.yml and
// config.toml in the configuration directory, later files taking
// precedence. Keys are flag names; a key prefixed by a command name, as in
// "merge-mode", applies to that command only. Nested tables are flattened
// with "-", so the TOML table [log] with key level sets --log-level.
// [cmd.Init] writes the current values to a new file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp layout (RFC3339, kitchen, none, ...)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o cmf .
//
// Such a build adds these flags:
//   - --pprof-mode: Enable profiling (see --help for modes)
//   - --pprof-dir: Set profile output directory (default: <cache>/pprof)
//
// # Exit Status
//
// [ExitCode] maps errors to: 1 usage, 2 file open, 3 schema compile, 4
// missing CSV header.
package cli
