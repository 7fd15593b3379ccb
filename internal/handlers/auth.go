package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/formula-evergreen/grandstand/internal/app"
)

const stateCookieName = "oauth_state"

type AuthHandler struct {
	service *app.Service
	oauth   *app.GoogleOAuth
}

func NewAuthHandler(service *app.Service) *AuthHandler {
	return &AuthHandler{
		service: service,
		oauth:   app.NewGoogleOAuth(service.Config),
	}
}

func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth.LoginURL(state), http.StatusFound)
}

// HandleGoogleCallback finishes the code flow. Any failure sends the user
// back to the landing page unauthenticated, same as a declined consent.
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		logger.Error.Printf("OAuth callback with bad state from %s", r.RemoteAddr)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	clearCookie(w, stateCookieName)

	identity, err := h.oauth.FetchIdentity(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		logger.Error.Printf("OAuth login failed: %v", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	sid, err := h.service.Sessions.Create(r.Context(), identity)
	if err != nil {
		logger.Error.Printf("Failed to create session: %v", err)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.service.Config.Auth.CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   h.service.Config.Auth.SessionTTLHours * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info.Printf("Logged in %s", identity.Email)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.service.Config.Auth.CookieName)
	if err == nil && cookie.Value != "" {
		if err := h.service.Sessions.Delete(r.Context(), cookie.Value); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "Error logging out")
			return
		}
	}
	clearCookie(w, h.service.Config.Auth.CookieName)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// HandleCurrentUser tells the frontend who is logged in and whether the
// admin controls should be shown.
func (h *AuthHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	ident := caller(h.service, r)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":         ident,
		"isAuthorized": h.service.Gate.IsAuthorized(ident),
	})
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
