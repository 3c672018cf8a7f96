package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/niwaya/kintai-backend/internal/domain/auth"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/handler/http/response"
	"github.com/niwaya/kintai-backend/internal/pkg/jwt"
)

type actorKey struct{}

// ActorFromContext returns the caller placed on the context by AuthRequired.
func ActorFromContext(ctx context.Context) (user.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(user.Actor)
	return actor, ok
}

func WithActor(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// AuthRequired must run after jwtauth.Verifier. It rejects missing, invalid,
// non-access and revoked tokens, then stores the caller as a user.Actor.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				if jwtauth.TokenFromHeader(r) == "" {
					response.HandleError(w, r, auth.ErrMissingToken)
					return
				}
				response.HandleError(w, r, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != jwt.TokenTypeAccess {
				response.HandleError(w, r, auth.ErrInvalidToken)
				return
			}
			if jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.HandleError(w, r, auth.ErrInvalidToken)
				return
			}

			role, _ := claims["role"].(string)
			actor := user.Actor{ID: token.Subject(), Role: user.Role(role)}
			if actor.ID == "" || !actor.Role.Valid() {
				response.HandleError(w, r, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}
