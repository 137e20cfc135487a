package app

import "github.com/shandysiswandi/seedauth/internal/twofa"

func (a *App) initModules() {
	if a.config.GetBool("modules.twofa.enabled") {
		dep := twofa.Dependency{
			Ctx:        a.ctx,
			PrivateKey: a.privateKey,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			HMAC:       a.hmac,
			Clock:      a.clock,
			Totp:       a.totp,
			Validator:  a.validator,
		}
		if a.cacheConn != nil {
			dep.CacheConn = a.cacheConn
		}

		if err := twofa.New(dep); err != nil {
			fatal("failed to init module twofa", "error", err)
		}
	}
}
