package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/devhub/internal/auth"
	"github.com/sakif/devhub/internal/service"
	"github.com/sakif/devhub/internal/upload"
)

// PostHandler serves the post feed and the like/comment interactions.
type PostHandler struct {
	posts   *service.PostService
	uploads *upload.Saver
	logger  *slog.Logger
}

func NewPostHandler(posts *service.PostService, uploads *upload.Saver, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, uploads: uploads, logger: logger}
}

// HandleCreate creates a post from a multipart form with an optional image.
//
// HTTP: POST /api/posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
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

	in := service.CreateInput{
		Content:    r.FormValue("content"),
		GitHubRepo: r.FormValue("githubRepo"),
	}
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		path, err := h.uploads.Save(file, header)
		if err != nil {
			writeError(w, err)
			return
		}
		in.ImageURL = path
	}

	post, err := h.posts.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HandleList returns all posts, newest first. ?author= filters by author.
//
// HTTP: GET /api/posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if authorID := r.URL.Query().Get("author"); authorID != "" {
		posts, err := h.posts.ListByAuthor(r.Context(), authorID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, posts)
		return
	}

	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleGetByID returns a single post.
//
// HTTP: GET /api/posts/{id}
func (h *PostHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleToggleLike likes or unlikes the post for the authenticated user and
// returns the updated post.
//
// HTTP: POST /api/posts/{id}/like
func (h *PostHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	post, err := h.posts.ToggleLike(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleComment appends a comment and returns the updated post.
//
// HTTP: POST /api/posts/{id}/comments
func (h *PostHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	post, err := h.posts.Comment(r.Context(), chi.URLParam(r, "id"), userID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HandleUpdate edits the post. Author only; omitted fields are unchanged.
//
// HTTP: PUT /api/posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Content    string `json:"content"`
		GitHubRepo string `json:"githubRepo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	post, err := h.posts.Update(r.Context(), chi.URLParam(r, "id"), userID, service.UpdateInput{
		Content:    req.Content,
		GitHubRepo: req.GitHubRepo,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleDelete removes the post. Author only.
//
// HTTP: DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}
