package httpapi

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/dmitrijs2005/photovault/internal/auth"
	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/logging"
)

// recovery turns a handler panic into a 500 problem response.
func recovery(logger logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(r.Context(), "panic recovered",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"stack", string(debug.Stack()),
				)
				respondError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the bearer token to the owner and stores it in the
// request context.
func (h *Handler) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := auth.GetUserIDFromToken(token, h.secret)
		if err != nil {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}

		next(w, r.WithContext(gateway.WithOwner(r.Context(), userID)))
	}
}
