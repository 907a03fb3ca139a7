package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

// PostService defines the post operations required by PostHandler.
type PostService interface {
	// Post returns one post with viewer's like state.
	Post(ctx context.Context, viewer, id int64) (models.PostDetail, error)
	// CreatePost publishes a post authored by userID.
	CreatePost(ctx context.Context, userID int64, req models.CreatePostRequest) (models.PostDetail, error)
	// UpdatePost edits a post owned by userID.
	UpdatePost(ctx context.Context, userID, id int64, req models.UpdatePostRequest) (models.PostDetail, error)
	// DeletePost removes a post owned by userID.
	DeletePost(ctx context.Context, userID, id int64) error
	// ToggleLike flips userID's like and returns the new state.
	ToggleLike(ctx context.Context, userID, id int64) (models.LikeResult, error)
	// AddComment appends a comment by userID.
	AddComment(ctx context.Context, userID, id int64, body string) (models.Comment, error)
	// Comments returns one page of a post's comments, oldest first.
	Comments(ctx context.Context, id int64, page, limit int) (models.CommentPage, error)
	// Report files a report against a post and returns its id.
	Report(ctx context.Context, userID, id int64, reason string) (int64, error)
}

// PostHandler serves /api/posts.
type PostHandler struct {
	// PostService performs the post operations.
	PostService PostService
	// Log records failed requests.
	Log         *zap.Logger
}

type postResponse struct {
	envelope
	models.PostDetail
}

func (h *PostHandler) writePost(w http.ResponseWriter, status int, p models.PostDetail, err error) {
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, status, postResponse{ok, p})
}

// Get handles GET /api/posts/{id}.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	p, err := h.PostService.Post(r.Context(), userID(r), id)
	h.writePost(w, http.StatusOK, p, err)
}

// Create handles POST /api/posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePostRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.PostService.CreatePost(r.Context(), userID(r), req)
	h.writePost(w, http.StatusCreated, p, err)
}

// Update handles PUT /api/posts/{id}.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	var req models.UpdatePostRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.PostService.UpdatePost(r.Context(), userID(r), id, req)
	h.writePost(w, http.StatusOK, p, err)
}

// Delete handles DELETE /api/posts/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	if err := h.PostService.DeletePost(r.Context(), userID(r), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{OK: true, Message: "Post deleted"})
}

// Like handles POST /api/posts/{id}/like, toggling the caller's like.
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	res, err := h.PostService.ToggleLike(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		envelope
		models.LikeResult
	}{ok, res})
}

// Comments handles GET /api/posts/{id}/comments?page=&limit=.
func (h *PostHandler) Comments(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	page, limit := pageParams(r)
	c, err := h.PostService.Comments(r.Context(), id, page, limit)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		envelope
		Items []models.Comment `json:"items"`
		Page  int              `json:"page"`
		Limit int              `json:"limit"`
		Total int              `json:"total"`
	}{ok, c.Items, c.Page, c.Limit, c.Total})
}

// AddComment handles POST /api/posts/{id}/comments.
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if !decode(w, r, &req) {
		return
	}
	c, err := h.PostService.AddComment(r.Context(), userID(r), id, req.Body)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		envelope
		models.Comment
	}{ok, c})
}

// Report handles POST /api/posts/{id}/report.
func (h *PostHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, valid := idParam(w, r, "id")
	if !valid {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if !decode(w, r, &req) {
		return
	}
	rid, err := h.PostService.Report(r.Context(), userID(r), id, req.Reason)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		envelope
		ID int64 `json:"id"`
	}{envelope{OK: true, Message: "Report submitted"}, rid})
}
