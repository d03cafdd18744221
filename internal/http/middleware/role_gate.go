package middleware

import (
	"net/http"

	"github.com/pediclinic/portal/internal/clinicapi"
)

// HomeFor maps a role to its landing route.
func HomeFor(role string) string {
	switch role {
	case clinicapi.RoleAdmin:
		return "/admin"
	case clinicapi.RoleReceptionist:
		return "/reception"
	default:
		return "/"
	}
}

// RequireRole gates page routes by role. Anonymous requests land on
// /login; a signed-in user with the wrong role lands on their own home
// instead of an error page.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromRequest(r)
			if !ok || sess.User == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if _, ok := allowed[sess.User.Role]; !ok {
				http.Redirect(w, r, HomeFor(sess.User.Role), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSessionAPI gates JSON endpoints: anonymous requests get 401
// instead of a redirect.
func RequireSessionAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromRequest(r); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"Authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoleAPI gates JSON endpoints by role with 401/403 instead of
// redirects.
func RequireRoleAPI(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromRequest(r)
			if !ok || sess.User == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"msg":"Authentication required"}`))
				return
			}
			if _, ok := allowed[sess.User.Role]; !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"msg":"Access denied"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
