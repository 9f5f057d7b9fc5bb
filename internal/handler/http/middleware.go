package http

import (
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/viktor-nazarov/bloomcart/internal/auth"
	"github.com/viktor-nazarov/bloomcart/internal/user"
)

// Authenticator resolves the Authorization header into an auth.Actor and
// stores it in the request context. Requests without the header pass through
// anonymously; the Require* guards decide what is actually reachable.
func Authenticator(users user.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			// A present credential is never anonymous: malformed and unknown
			// tokens both surface the same 401 so clients drop the stale
			// session instead of silently losing access.
			token, ok := bearerToken(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Invalid or expired session")
				return
			}

			actor, err := users.ActorByToken(r.Context(), token)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

func bearerToken(r *http.Request) (uuid.UUID, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return uuid.Nil, false
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return uuid.Nil, false
	}

	token, err := uuid.FromString(strings.TrimPrefix(header, prefix))
	if err != nil {
		log.Debug().Err(err).Msg("Malformed bearer token")
		return uuid.Nil, false
	}

	return token, true
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.FromContext(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !actor.IsAdmin() {
			respondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
