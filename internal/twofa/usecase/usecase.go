package usecase

import (
	"context"
	"crypto/rsa"
	"errors"
	"time"

	"github.com/shandysiswandi/seedauth/internal/pkg/clock"
	"github.com/shandysiswandi/seedauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/seedauth/internal/pkg/hash"
	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/otp"
	"github.com/shandysiswandi/seedauth/internal/pkg/seed"
	"github.com/shandysiswandi/seedauth/internal/pkg/uid"
	"github.com/shandysiswandi/seedauth/internal/pkg/validator"
	"github.com/shandysiswandi/seedauth/internal/twofa/entity"
	"go.opentelemetry.io/otel/trace"
)

type SeedProvisionedEvent struct {
	EventID       string
	Fingerprint   string
	ProvisionedAt time.Time
}

// repoSeed returns entity.ErrSeedNotProvisioned from Load while no seed was stored.
type repoSeed interface {
	Load(ctx context.Context) (seed.Seed, error)
	Save(ctx context.Context, s seed.Seed) error
	Invalidate(ctx context.Context)
}

type repoMessaging interface {
	PublishSeedProvisioned(ctx context.Context, msg SeedProvisionedEvent) error
}

type repoCodeLog interface {
	Write(ctx context.Context, line string) error
}

type Usecase struct {
	repoSeed      repoSeed
	repoMessaging repoMessaging
	repoCodeLog   repoCodeLog
	privateKey    *rsa.PrivateKey
	totp          otp.OTP
	hmac          hash.Hash
	uuid          uid.StringID
	clock         clock.Clocker
	validator     validator.Validator
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoSeed      repoSeed
	RepoMessaging repoMessaging
	RepoCodeLog   repoCodeLog
	PrivateKey    *rsa.PrivateKey
	Totp          otp.OTP
	HMAC          hash.Hash
	UUID          uid.StringID
	Clock         clock.Clocker
	Validator     validator.Validator
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoSeed:      dep.RepoSeed,
		repoMessaging: dep.RepoMessaging,
		repoCodeLog:   dep.RepoCodeLog,
		privateKey:    dep.PrivateKey,
		totp:          dep.Totp,
		hmac:          dep.HMAC,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		validator:     dep.Validator,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("twofa.usecase").Start(ctx, name)
}

// fingerprint identifies a seed in logs and events without revealing it.
func (s *Usecase) fingerprint(sd seed.Seed) string {
	sum, err := s.hmac.Hash(sd.String())
	if err != nil {
		return ""
	}
	return string(sum)
}

// loadSeed reads the stored seed, telling "not provisioned" apart from other failures.
func (s *Usecase) loadSeed(ctx context.Context) (seed.Seed, bool, error) {
	sd, err := s.repoSeed.Load(ctx)
	if errors.Is(err, entity.ErrSeedNotProvisioned) {
		return seed.Seed{}, false, nil
	}
	if err != nil {
		return seed.Seed{}, false, err
	}
	return sd, true, nil
}
