package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mind-engage/mindengage-qbank/internal/logger"
	"github.com/mind-engage/mindengage-qbank/internal/rbac"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

func issue(w http.ResponseWriter, a *AuthService, u User, status int) {
	tok, err := a.IssueJWT(u.Username, u.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "issue token")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: tok, TokenType: "bearer", Username: u.Username, Role: u.Role})
}

// POST /auth/signup {"username","password","fullname"}
// Self sign-up always yields a student.
func SignupHandler(a *AuthService, users *UserStore, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Fullname string `json:"fullname"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid input", "bad json")
			return
		}
		u, err := users.Create(r.Context(), req.Username, req.Password, req.Fullname, rbac.RoleStudent)
		switch {
		case errors.Is(err, ErrUserExists):
			writeError(w, http.StatusConflict, "conflict", err.Error())
			return
		case err != nil:
			writeError(w, http.StatusBadRequest, "invalid input", err.Error())
			return
		}
		log.Info("user signed up", "user", u.Username)
		issue(w, a, u, http.StatusCreated)
	}
}

// POST /auth/login {"username","password"}
func LoginHandler(a *AuthService, users *UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid input", "bad json")
			return
		}
		u, err := users.Authenticate(r.Context(), req.Username, req.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "invalid credentials")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error", "login failed")
			return
		}
		issue(w, a, u, http.StatusOK)
	}
}
