package app

import (
	"context"
	"crypto/rsa"
	"net/http"

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
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine  *goroutine.Manager
	validator  validator.Validator
	clock      clock.Clocker
	hmac       hash.Hash
	uuid       uid.StringID
	totp       otp.OTP
	privateKey *rsa.PrivateKey

	// resources
	cacheConn *redis.Client
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// onClose registers fn to run during Stop. Closers run in reverse order of
// registration so resources are released before what they depend on.
func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initPrivateKey()
	app.initCache()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()

	return app
}
