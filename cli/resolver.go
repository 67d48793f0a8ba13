package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// config implements [kong.Resolver] over a flattened configuration document.
// Nested tables are joined with "-", so the YAML document
//
//	log:
//	  level: debug
//	merge:
//	  mode: merge_dest
//
// sets --log-level and --mode on the merge command. Keys may use "_" in
// place of "-".
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. Flags of a subcommand are looked up
// both bare and qualified by the command name.
func (c config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	names := []string{flag.Name}

	if parent != nil && parent.Command != nil {
		names = append([]string{parent.Command.Name + "-" + flag.Name}, names...)
	}

	for _, name := range names {
		if v, ok := c[name]; ok {
			return v, nil
		}

		if v, ok := c[strings.ReplaceAll(name, "-", "_")]; ok {
			return v, nil
		}
	}

	return nil, nil
}

// loadYAML is a [kong.ConfigurationLoader] for YAML files.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return flatten(doc), nil
}

// loadTOML is a [kong.ConfigurationLoader] for TOML files.
func loadTOML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	return flatten(doc), nil
}

func flatten(doc map[string]any) config {
	c := config{}
	c.add("", doc)

	return c
}

func (c config) add(prefix string, v any) {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			c.add(join(prefix, k), e)
		}

	case map[any]any:
		for k, e := range v {
			c.add(join(prefix, fmt.Sprint(k)), e)
		}

	default:
		if prefix != "" {
			c[prefix] = scalar(v)
		}
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "-" + key
}

// scalar renders numbers as strings, which kong parses with the flag's own
// mapper.
func scalar(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]string, len(v))
		for i, e := range v {
			out[i] = fmt.Sprint(scalar(e))
		}

		return strings.Join(out, ",")
	default:
		return v
	}
}
