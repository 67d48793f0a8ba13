package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/cmf/log"
	"github.com/ardnew/cmf/profile"
)

// Init writes the effective global flag values to a configuration file.
type Init struct {
	Force  bool   `                  help:"Overwrite an existing configuration file." short:"f"`
	Format string `default:"yaml" enum:"yaml,toml,json" help:"Configuration file format (${enum})."`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrUsage.With(slog.String("issue", "init requires a parsed command line"))
	}

	base, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	path := base + "." + i.Format

	if _, err := os.Stat(path); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", path), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := i.encode(values(ktx))
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	log.InfoContext(ctx, "initialized configuration file",
		slog.String("path", path),
		slog.String("format", i.Format),
	)

	return nil
}

func (i *Init) encode(v map[string]any) ([]byte, error) {
	switch i.Format {
	case "json":
		return json.MarshalIndent(v, "", "  ")

	case "toml":
		var buf bytes.Buffer
		err := toml.NewEncoder(&buf).Encode(v)

		return buf.Bytes(), err

	default:
		return yaml.Marshal(v)
	}
}

// values collects the application-level flags that have a value, keyed by
// flag name.
func values(ktx *kong.Context) map[string]any {
	skip := []string{"help", "version", profile.Tag}
	out := make(map[string]any)

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(skip, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		switch v := ktx.FlagValue(flag).(type) {
		case nil:
		case bool, int, int64, float64:
			out[flag.Name] = v
		case string:
			if v != "" {
				out[flag.Name] = v
			}
		case []string:
			if len(v) > 0 {
				out[flag.Name] = v
			}
		default:
			if s := fmt.Sprint(v); s != "" {
				out[flag.Name] = s
			}
		}
	}

	return out
}
