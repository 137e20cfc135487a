package twofa

import (
	"context"
	"crypto/rsa"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/seedauth/internal/pkg/clock"
	"github.com/shandysiswandi/seedauth/internal/pkg/config"
	"github.com/shandysiswandi/seedauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/seedauth/internal/pkg/hash"
	"github.com/shandysiswandi/seedauth/internal/pkg/instrument"
	"github.com/shandysiswandi/seedauth/internal/pkg/messaging"
	"github.com/shandysiswandi/seedauth/internal/pkg/otp"
	"github.com/shandysiswandi/seedauth/internal/pkg/router"
	"github.com/shandysiswandi/seedauth/internal/pkg/uid"
	"github.com/shandysiswandi/seedauth/internal/pkg/validator"
	"github.com/shandysiswandi/seedauth/internal/twofa/inbound"
	"github.com/shandysiswandi/seedauth/internal/twofa/outbound/codelog"
	"github.com/shandysiswandi/seedauth/internal/twofa/outbound/mq"
	"github.com/shandysiswandi/seedauth/internal/twofa/outbound/seedstore"
	"github.com/shandysiswandi/seedauth/internal/twofa/usecase"
)

type Dependency struct {
	// Ctx scopes the background consumer and code log job. Both are skipped when nil.
	Ctx        context.Context
	PrivateKey *rsa.PrivateKey            `validate:"required"`
	CacheConn  redis.UniversalClient      // only needed by the redis seed driver
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Totp       otp.OTP                    `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	store, err := seedstore.New(seedstore.Options{
		Driver:   dep.Config.GetString("twofa.seed.driver"),
		Path:     dep.Config.GetString("twofa.seed.path"),
		Redis:    dep.CacheConn,
		RedisKey: dep.Config.GetString("twofa.seed.redis_key"),
		NoCache:  dep.Config.GetBool("twofa.seed.no_cache"),
	}, dep.Instrument)
	if err != nil {
		return err
	}

	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	repoCodeLog := codelog.NewFile(dep.Config.GetString("twofa.code_log.path"), dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoSeed:      store,
		RepoMessaging: repoMsg,
		RepoCodeLog:   repoCodeLog,
		PrivateKey:    dep.PrivateKey,
		Totp:          dep.Totp,
		HMAC:          dep.HMAC,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Validator:     dep.Validator,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
		inbound.RegisterCodeLogJob(dep.Ctx, dep.Config, dep.Goroutine, dep.UUID, uc)
	}

	return nil
}
