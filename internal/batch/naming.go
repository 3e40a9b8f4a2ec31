// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
)

// maxSuffix bounds the search for a free output name.
const maxSuffix = 10000

// registry hands out output names. A name is reserved before the sink is
// asked to create it, so two jobs of the same run never race for one
// file; names already present in the sink are skipped.
type registry struct {
	mu       sync.Mutex
	reserved map[string]bool
}

func newRegistry() *registry {
	return &registry{reserved: make(map[string]bool)}
}

// reserve claims the first free candidate at or after suffix n.
func (r *registry) reserve(base string, n int) (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ; n <= maxSuffix; n++ {
		name := candidate(base, n)
		if !r.reserved[name] {
			r.reserved[name] = true
			return name, n
		}
	}
	return "", n
}

// store writes data under base or the first free suffixed variant of it
// and returns the name used.
func (r *registry) store(ctx context.Context, sink Sink, base string, data []byte) (string, error) {
	for n := 1; ; n++ {
		name, at := r.reserve(base, n)
		if name == "" {
			return "", fmt.Errorf("no free output name for %s", base)
		}
		err := sink.Write(ctx, name, data)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("writing output: %w", err)
		}
		n = at
	}
}

// candidate returns base for n == 1 and "stem-n.ext" otherwise.
func candidate(base string, n int) string {
	if n == 1 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(base, ext), n, ext)
}
