package auth

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/mind-engage/mindengage-qbank/internal/rbac"
)

// AttachRoleFromDB replaces the token role with the role stored for the
// subject, so demotions take effect before tokens expire. With
// allowClaimFallback a subject unknown to the users table keeps its claim.
func AttachRoleFromDB(h *sql.DB, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			var role string
			err := h.QueryRowContext(ctx,
				`SELECT role FROM users WHERE username=$1 AND provider=$2`,
				SubjectFromContext(ctx), ProviderLocal,
			).Scan(&role)

			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case errors.Is(err, sql.ErrNoRows) && allowClaimFallback:
				next.ServeHTTP(w, r)
			case errors.Is(err, sql.ErrNoRows):
				writeError(w, http.StatusForbidden, "forbidden", "unknown user")
			default:
				writeError(w, http.StatusInternalServerError, "internal error", "role lookup failed")
			}
		})
	}
}
