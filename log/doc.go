// Package log wraps [log/slog] with a value-typed [Logger] configured by
// functional options.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("kitchen"),
//		log.WithFormat(log.FormatText))
//
//	logger.Info("compiled schema", slog.String("name", "jhu"))
//
// Attributes are always typed [slog.Attr] values. [Logger.With] returns a
// logger adding attributes to every message; [Logger.Wrap] returns one with
// different options.
//
// The zero [Logger] discards everything, so library types hold one by value
// and callers opt in with a WithLogger option.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-row and
// per-statement events. [ParseLevel] also accepts slog offsets such as
// "warn+2".
//
// # Package logger
//
// [Config], [Info], [WarnContext] and friends operate on a process-wide
// logger that the command line reconfigures before running a command.
//
// # Data warnings
//
// [Once] emits a warning the first time a key is seen and counts repeats,
// which keeps a sparse data set from flooding the log with one line per
// missing cell.
package log
