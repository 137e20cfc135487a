package seedstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/shandysiswandi/seedauth/internal/pkg/atomicfile"
	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/seed"
	"github.com/shandysiswandi/seedauth/internal/twofa/entity"
)

// File keeps the seed as 64 lowercase hex characters in a single file.
type File struct {
	path  string
	cache snapshot
	ins   instrument.Instrumentation

	// writeMu serializes writers; readers never take it.
	writeMu sync.Mutex
}

func NewFile(path string, cache bool, ins instrument.Instrumentation) *File {
	return &File{path: path, cache: newSnapshot(cache), ins: ins}
}

func (f *File) Load(ctx context.Context) (_ seed.Seed, err error) {
	if sd, ok := f.cache.get(); ok {
		return sd, nil
	}

	_, span := startSpan(ctx, f.ins, "File.Load")
	defer func() { endSpan(span, err) }()

	gen := f.cache.generation()
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return seed.Seed{}, entity.ErrSeedNotProvisioned
	}
	if err != nil {
		return seed.Seed{}, fmt.Errorf("seedstore: read %s: %w", f.path, err)
	}

	sd, err := parseStored(string(data))
	if err != nil {
		return seed.Seed{}, err
	}

	f.cache.fill(gen, sd)
	return sd, nil
}

// Save replaces the seed file atomically: the new content is written to a
// temporary file in the same directory, synced and renamed over the old one.
func (f *File) Save(ctx context.Context, sd seed.Seed) (err error) {
	_, span := startSpan(ctx, f.ins, "File.Save")
	defer func() { endSpan(span, err) }()

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	if err := atomicfile.Write(f.path, []byte(sd.String()), 0o600); err != nil {
		return fmt.Errorf("seedstore: write %s: %w", f.path, err)
	}

	f.cache.set(sd)
	return nil
}

func (f *File) Invalidate(context.Context) {
	f.cache.clear()
}
