package seedstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/seed"
	"github.com/shandysiswandi/seedauth/internal/twofa/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

const (
	DriverFile  = "file"
	DriverRedis = "redis"
)

var ErrUnknownDriver = errors.New("seedstore: unknown driver")

// Store is the process-wide holder of the accepted seed.
type Store interface {
	Load(ctx context.Context) (seed.Seed, error)
	Save(ctx context.Context, s seed.Seed) error
	Invalidate(ctx context.Context)
}

type Options struct {
	Driver string
	// Path is the seed file of the file driver.
	Path string
	// Redis and RedisKey configure the redis driver.
	Redis    redis.UniversalClient
	RedisKey string
	// NoCache makes every Load read the backing store.
	NoCache bool
}

// New builds the store selected by opts.Driver.
func New(opts Options, ins instrument.Instrumentation) (Store, error) {
	switch strings.TrimSpace(opts.Driver) {
	case DriverFile, "":
		if opts.Path == "" {
			return nil, errors.New("seedstore: file path is required")
		}
		return NewFile(opts.Path, !opts.NoCache, ins), nil
	case DriverRedis:
		if opts.Redis == nil {
			return nil, errors.New("seedstore: redis client is required")
		}
		return NewRedis(opts.Redis, opts.RedisKey, !opts.NoCache, ins), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, opts.Driver)
	}
}

// snapshot caches the last seed read or written. Readers see either the old
// or the new pointer, never a partial value.
//
// Every Save and Invalidate moves the generation forward. A Load records the
// generation before it reads the backing store and tags what it caches with
// it, so a read that raced a newer Save is never served from the cache.
type snapshot struct {
	enabled bool
	ptr     *atomic.Pointer[cached]
	gen     *atomic.Uint64
}

type cached struct {
	seed seed.Seed
	gen  uint64
}

func newSnapshot(enabled bool) snapshot {
	return snapshot{
		enabled: enabled,
		ptr:     atomic.NewPointer[cached](nil),
		gen:     atomic.NewUint64(0),
	}
}

func (s snapshot) get() (seed.Seed, bool) {
	if !s.enabled {
		return seed.Seed{}, false
	}
	if p := s.ptr.Load(); p != nil && p.gen == s.gen.Load() {
		return p.seed, true
	}
	return seed.Seed{}, false
}

// generation is read by Load before it touches the backing store.
func (s snapshot) generation() uint64 {
	return s.gen.Load()
}

// fill caches a value read under generation g.
func (s snapshot) fill(g uint64, sd seed.Seed) {
	if s.enabled {
		s.ptr.Store(&cached{seed: sd, gen: g})
	}
}

// set caches a value that was just written.
func (s snapshot) set(sd seed.Seed) {
	g := s.gen.Inc()
	if s.enabled {
		s.ptr.Store(&cached{seed: sd, gen: g})
	}
}

func (s snapshot) clear() {
	s.gen.Inc()
	s.ptr.Store(nil)
}

// parseStored validates what a backing store returned. A malformed value is
// reported as is; nothing retries it.
func parseStored(raw string) (seed.Seed, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return seed.Seed{}, entity.ErrSeedNotProvisioned
	}

	sd, err := seed.Parse(raw)
	if err != nil {
		return seed.Seed{}, fmt.Errorf("seedstore: stored seed is malformed: %w", err)
	}
	return sd, nil
}

func startSpan(ctx context.Context, ins instrument.Instrumentation, name string) (context.Context, trace.Span) {
	return ins.Tracer("twofa.outbound.seedstore").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, entity.ErrSeedNotProvisioned) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
