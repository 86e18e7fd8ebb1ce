package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bolajon/bolajon-backend/api/responses"
	pkgAuth "github.com/bolajon/bolajon-backend/pkg/auth"
	"github.com/bolajon/bolajon-backend/pkg/auth/session"
	"github.com/bolajon/bolajon-backend/pkg/config"
	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
	"github.com/bolajon/bolajon-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
// Requests without credentials pass through as guests when a X-Guest-Token
// header is present; handlers that require a shopper reject those themselves.
func Auth(cfg config.JWTConfig, verifier session.ActiveSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				if guest := strings.TrimSpace(r.Header.Get("X-Guest-Token")); guest != "" {
					ctx := WithGuestToken(r.Context(), guest)
					if logg != nil {
						ctx = logg.WithField(ctx, "guest_token", guest)
					}
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.Active(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxShopperID, claims.ShopperID.String())
			ctx = context.WithValue(ctx, ctxLoginSessionID, claims.ID)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"shopper_id":       claims.ShopperID.String(),
					"login_session_id": claims.ID,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireShopper rejects guest requests; used on checkout routes.
func RequireShopper(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ShopperIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to continue"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
