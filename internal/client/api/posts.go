package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

type postResponse struct {
	envelope
	models.PostDetail
}

type commentResponse struct {
	envelope
	models.Comment
}

type commentsResponse struct {
	envelope
	Items []models.Comment `json:"items"`
	Page  *int             `json:"page"`
	Limit *int             `json:"limit"`
	Total *int             `json:"total"`
}

type likeResponse struct {
	envelope
	Liked     *bool `json:"liked"`
	LikeCount *int  `json:"like_count"`
}

type reportResponse struct {
	envelope
	ID int64 `json:"id"`
}

func (a *API) post(ctx context.Context, method, path string, body any, fallback string) (models.PostDetail, error) {
	var resp postResponse
	if err := a.call(ctx, method, path, nil, body, &resp, fallback); err != nil {
		return models.PostDetail{}, err
	}
	if resp.ID == 0 {
		return models.PostDetail{}, decodeError(method, path, fallback, "missing post id")
	}
	return resp.PostDetail, nil
}

// Post returns one post as seen by the current user.
func (a *API) Post(ctx context.Context, id int64) (models.PostDetail, error) {
	return a.post(ctx, http.MethodGet, postPath(id, ""), nil, "Failed to load post")
}

// CreatePost publishes a new post.
func (a *API) CreatePost(ctx context.Context, req models.CreatePostRequest) (models.PostDetail, error) {
	return a.post(ctx, http.MethodPost, "/posts", req, "Failed to create post")
}

// UpdatePost edits a post owned by the current user.
func (a *API) UpdatePost(ctx context.Context, id int64, req models.UpdatePostRequest) (models.PostDetail, error) {
	return a.post(ctx, http.MethodPut, postPath(id, ""), req, "Failed to update post")
}

// DeletePost removes a post owned by the current user.
func (a *API) DeletePost(ctx context.Context, id int64) error {
	var resp envelope
	return a.call(ctx, http.MethodDelete, postPath(id, ""), nil, nil, &resp, "Failed to delete post")
}

// LikePost toggles the current user's like and returns the server's view of it.
func (a *API) LikePost(ctx context.Context, id int64) (models.LikeResult, error) {
	path, fallback := postPath(id, "/like"), "Failed to update like"

	var resp likeResponse
	if err := a.call(ctx, http.MethodPost, path, nil, nil, &resp, fallback); err != nil {
		return models.LikeResult{}, err
	}
	if resp.Liked == nil || resp.LikeCount == nil {
		return models.LikeResult{}, decodeError(http.MethodPost, path, fallback, "missing liked or like_count")
	}
	return models.LikeResult{Liked: *resp.Liked, LikeCount: *resp.LikeCount}, nil
}

// AddComment posts a comment and returns it as stored.
func (a *API) AddComment(ctx context.Context, id int64, body string) (models.Comment, error) {
	path, fallback := postPath(id, "/comments"), "Failed to add comment"

	var resp commentResponse
	if err := a.call(ctx, http.MethodPost, path, nil, map[string]string{"body": body}, &resp, fallback); err != nil {
		return models.Comment{}, err
	}
	if resp.Comment.ID == 0 {
		return models.Comment{}, decodeError(http.MethodPost, path, fallback, "missing comment id")
	}
	return resp.Comment, nil
}

// Comments returns one page of a post's comments.
func (a *API) Comments(ctx context.Context, id int64, page, limit int) (models.CommentPage, error) {
	var resp commentsResponse
	if err := a.call(ctx, http.MethodGet, postPath(id, "/comments"), pageQuery(page, limit), nil, &resp, "Failed to load comments"); err != nil {
		return models.CommentPage{}, err
	}
	return models.CommentPage{
		Items: nonNil(resp.Items),
		Page:  valueOr(resp.Page, page),
		Limit: valueOr(resp.Limit, limit),
		Total: valueOr(resp.Total, 0),
	}, nil
}

// ReportPost flags a post for moderators and returns the report id.
func (a *API) ReportPost(ctx context.Context, id int64, reason string) (int64, error) {
	var resp reportResponse
	if err := a.call(ctx, http.MethodPost, postPath(id, "/report"), nil, map[string]string{"reason": reason}, &resp, "Failed to report post"); err != nil {
		return 0, err
	}
	return resp.ID, nil
}
