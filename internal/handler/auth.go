package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/devhub/internal/auth"
	"github.com/sakif/devhub/internal/service"
	"github.com/sakif/devhub/internal/upload"
)

// AuthHandler covers registration, credential login, the GitHub OAuth flow,
// and the current-user endpoint.
type AuthHandler struct {
	auths   *service.AuthService
	users   *service.UserService
	github  *auth.GitHubProvider // nil when OAuth is not configured
	uploads *upload.Saver
	logger  *slog.Logger
}

func NewAuthHandler(
	auths *service.AuthService,
	users *service.UserService,
	github *auth.GitHubProvider,
	uploads *upload.Saver,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auths:   auths,
		users:   users,
		github:  github,
		uploads: uploads,
		logger:  logger,
	}
}

// authResponse is returned from register and login: the user plus the token
// the client stores for subsequent requests.
type authResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

// HandleRegister creates an account from a multipart form, with an optional
// profileImage file part.
//
// HTTP: POST /api/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(upload.MaxSize); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "expected a multipart form",
		})
		return
	}

	in := service.RegisterInput{
		Name:        r.FormValue("name"),
		Username:    r.FormValue("username"),
		Email:       r.FormValue("email"),
		Password:    r.FormValue("password"),
		GitHubURL:   r.FormValue("githubUrl"),
		LinkedinURL: r.FormValue("linkedinUrl"),
	}

	if file, header, err := r.FormFile("profileImage"); err == nil {
		defer file.Close()
		path, err := h.uploads.Save(file, header)
		if err != nil {
			writeError(w, err)
			return
		}
		in.ProfileImage = path
	}

	user, err := h.auths.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auths.Login(r.Context(), user.Username, r.FormValue("password"))
	if err != nil {
		writeError(w, err)
		return
	}

	setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, authResponse{User: result.User, Token: result.Token})
}

// HandleLogin authenticates with username and password.
//
// HTTP: POST /api/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	result, err := h.auths.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusOK, authResponse{User: result.User, Token: result.Token})
}

// HandleMe returns the authenticated user's own record.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleLogout clears the token cookie. Clients holding the token in a
// header simply discard it.
//
// HTTP: POST /api/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleGitHubLogin starts the OAuth flow by redirecting to GitHub, with a
// random state value in a short-lived cookie for CSRF protection.
//
// HTTP: GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback finishes the OAuth flow: verify state, exchange the
// code, create or refresh the account, set the token cookie, redirect home.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state mismatch or missing")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: authorization denied", slog.String("error", errParam))
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth code exchange failed", slog.String("error", err.Error()))
		http.Error(w, "OAuth exchange failed", http.StatusBadGateway)
		return
	}

	result, err := h.auths.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, err)
		return
	}

	setTokenCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
