package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/duedash/duedash/internal/common"
	"github.com/duedash/duedash/internal/server/models"
)

// authedHandler is a handler that runs with an authenticated user.
type authedHandler func(w http.ResponseWriter, r *http.Request, user *models.User)

// requireAuth extracts the bearer token, authenticates it through the
// session guard, and invokes next with the resolved user. Every failure is
// a 401 with a WWW-Authenticate hint; the precise kind is only logged.
func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		rawToken, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || rawToken == "" {
			writeUnauthorized(w, "Not authenticated")
			return
		}

		user, err := s.guard.Authenticate(r.Context(), rawToken)
		if err != nil {
			s.logger.Warn(r.Context(), "authentication rejected", "error", err)
			writeUnauthorized(w, unauthorizedDetail(err))
			return
		}

		next(w, r, user)
	}
}

// unauthorizedDetail maps each authentication error kind to the message the
// HTTP boundary renders. Expiry and wrong type get specific texts; anything
// else collapses into the generic credentials message.
func unauthorizedDetail(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, common.ErrTokenWrongType):
		return "Invalid token type"
	default:
		return "Could not validate credentials"
	}
}
