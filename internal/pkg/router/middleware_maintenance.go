package router

import (
	"net/http"

	"github.com/samber/lo"
	"github.com/shandysiswandi/seedauth/internal/pkg/config"
)

// middlewareMaintenance rejects routes listed in app.maintenance.endpoints.
// The list is read on every request so a config reload takes effect immediately.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			blocked := lo.SliceToMap(cfg.GetArray("app.maintenance.endpoints"), func(e string) (string, struct{}) {
				return e, struct{}{}
			})
			if _, ok := blocked[matchedRoutePath(r)]; ok {
				writeJSON(w, ErrorResponse{Error: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
