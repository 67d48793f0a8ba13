package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/cmf/log"
)

func Example_textFormat() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Info("compiled schema", slog.String("name", "jhu"), slog.Int("variables", 6))
	// Output: level=INFO msg="compiled schema" name=jhu variables=6
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelWarn),
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Debug("aligned headers")
	logger.Warn("row missing field", slog.String("field", "Deaths"))
	// Output: level=WARN msg="row missing field" field=Deaths
}

func Example_once() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	var once log.Once

	ctx := context.Background()
	for range 3 {
		once.Warn(ctx, logger, "Italy", "missing pivot cell", slog.String("key", "Italy"))
	}
	// Output: level=WARN msg="missing pivot cell" key=Italy
}
