package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/devhub/internal/auth"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/service"
	"github.com/sakif/devhub/internal/upload"
)

// UserHandler serves user listings, search, profiles, and profile updates.
type UserHandler struct {
	users   *service.UserService
	uploads *upload.Saver
	logger  *slog.Logger
}

func NewUserHandler(users *service.UserService, uploads *upload.Saver, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, uploads: uploads, logger: logger}
}

// HandleList returns all users, or a name search when ?q= is present.
//
// HTTP: GET /api/users
// HTTP: GET /api/users?q=ada
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var (
		users []model.User
		err   error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		users, err = h.users.Search(r.Context(), q)
	} else {
		users, err = h.users.List(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGetByID returns one user's profile.
//
// HTTP: GET /api/users/{id}
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateProfile updates the authenticated user's own profile from a
// multipart form; fields left empty stay unchanged.
//
// HTTP: PUT /api/profile
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	if err := r.ParseMultipartForm(upload.MaxSize); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "expected a multipart form",
		})
		return
	}

	in := service.UpdateProfileInput{
		Name:        r.FormValue("name"),
		Username:    r.FormValue("username"),
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

	user, err := h.users.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
