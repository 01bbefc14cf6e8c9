package api

import (
	"net/http"
	"time"

	"signalcraft-be/internal/auth"
	"signalcraft-be/internal/utils"
)

func (h *Handler) setTokenCookie(w http.ResponseWriter, name, value string, expiresIn int) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if expiresIn > 0 {
		c.MaxAge = expiresIn
		c.Expires = time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	http.SetCookie(w, c)
}

func (h *Handler) clearTokenCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func (h *Handler) exchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	tokens, err := h.Identity.Exchange(r.Context(), req.Code, req.CodeVerifier, req.RedirectURI)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setTokenCookie(w, auth.AccessTokenCookie, tokens.AccessToken, tokens.ExpiresIn)
	if tokens.IDToken != "" {
		h.setTokenCookie(w, auth.IDTokenCookie, tokens.IDToken, tokens.ExpiresIn)
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.clearTokenCookie(w, auth.AccessTokenCookie)
	h.clearTokenCookie(w, auth.IDTokenCookie)

	var logoutURL *string
	if u, err := h.Identity.LogoutURL(); err == nil {
		logoutURL = &u
	}
	utils.WriteJSON(w, http.StatusOK, map[string]*string{"logoutUrl": logoutURL})
}

func (h *Handler) identityPoolConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Identity.IdentityPoolConfig()
	if err != nil {
		utils.WriteJSON(w, http.StatusOK, map[string]*string{"identityPoolId": nil, "region": nil})
		return
	}
	utils.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	c := auth.CallerFrom(r.Context())
	groups := c.Groups
	if groups == nil {
		groups = []string{}
	}
	utils.WriteJSON(w, http.StatusOK, meResponse{
		ID:       c.Sub,
		Email:    utils.NilIfEmpty(c.Email),
		Username: utils.NilIfEmpty(c.Username),
		Groups:   groups,
	})
}
