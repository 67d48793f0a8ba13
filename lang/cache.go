package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// cache holds parsed programs keyed by the xxh3 hash of their source.
var cache sync.Map

// entry parses its source at most once.
type entry struct {
	once sync.Once
	prog *Program
	err  error
}

// Parse parses src, reusing a previous parse of identical text. The returned
// program is a private copy that callers may modify.
func Parse(ctx context.Context, src string, opts ...Option) (*Program, error) {
	hash := xxh3.HashString(src)
	key := strconv.FormatUint(hash, 36)

	value, hit := cache.LoadOrStore(key, new(entry))

	ent, ok := value.(*entry)
	if !ok {
		return ParseString(ctx, src, opts...)
	}

	ent.once.Do(func() {
		ent.prog, ent.err = ParseString(ctx, src, opts...)
	})

	if ent.err != nil {
		return nil, ent.err
	}

	prog := ent.prog.Clone()
	for _, opt := range opts {
		opt(prog)
	}

	prog.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	return prog, nil
}

// ParseReader reads all of r and parses it with [Parse].
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Program, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("source", "reader"))
	}

	return Parse(ctx, string(data), opts...)
}

// ClearCache drops every cached parse.
func ClearCache() { cache = sync.Map{} }
