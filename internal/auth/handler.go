package auth

import (
	"log/slog"
	"net/http"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/frahmantamala/personal-finance/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service      AuthService
	CookieSecure bool
}

func NewHandler(svc AuthService, cookieSecure bool) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:  transport.NewBaseHandler(lg),
		Service:      svc,
		CookieSecure: cookieSecure,
	}
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	session, err := h.Service.Authenticate(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(session.Token, session.ExpiresAt))
	h.WriteJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		Message:   "Logged in successfully",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout expires the session cookie. Tokens are stateless, so a copied token stays valid until it expires.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", time.Unix(0, 0)))
	h.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) sessionCookie(value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(time.Until(expires).Seconds())
	}
	return cookie
}

// tokenFromRequest prefers the session cookie and falls back to a Bearer header.
func (h *Handler) tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return h.ExtractTokenFromHeader(r)
}

// AuthMiddleware rejects requests without a valid token with a uniform 401.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.Service.ValidateToken(h.tokenFromRequest(r))
		if err != nil {
			logger.From(r.Context()).Warn("auth middleware: request rejected",
				"reason", err,
				"method", r.Method,
				"path", r.URL.Path)
			h.HandleServiceError(w, errors.ErrUnauthorized)
			return
		}

		ctx := errors.ContextWithSubject(r.Context(), claims.Subject)
		ctx = logger.With(ctx, "subject", claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
