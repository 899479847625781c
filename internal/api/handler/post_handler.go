package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devconnector/connector-api/internal/api/metrics"
	"github.com/devconnector/connector-api/internal/core/ports"
)

// PostHandler serves /api/post. Every route is private.
type PostHandler struct {
	service ports.PostService
}

func NewPostHandler(service ports.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// Create godoc
// @Summary   Publish a post
// @Tags      post
// @Accept    json
// @Produce   json
// @Security  ApiKeyAuth
// @Param     body  body      textRequest  true  "Post text"
// @Success   200   {object}  domain.Post
// @Failure   400   {object}  errorsResponse
// @Failure   401   {object}  messageResponse
// @Router    /api/post [post]
func (h *PostHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req textRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.service.Create(c.Request().Context(), p, req.Text)
	if err != nil {
		return err
	}
	metrics.PostInteractionsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusOK, post)
}

// List godoc
// @Summary   All posts, newest first
// @Tags      post
// @Produce   json
// @Security  ApiKeyAuth
// @Success   200  {array}   domain.Post
// @Failure   401  {object}  messageResponse
// @Router    /api/post [get]
func (h *PostHandler) List(c echo.Context) error {
	posts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// Get godoc
// @Summary   A single post
// @Tags      post
// @Produce   json
// @Security  ApiKeyAuth
// @Param     id   path      string  true  "Post id"
// @Success   200  {object}  domain.Post
// @Failure   404  {object}  messageResponse
// @Router    /api/post/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	post, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Delete godoc
// @Summary   Delete a post
// @Tags      post
// @Produce   json
// @Security  ApiKeyAuth
// @Param     id   path      string  true  "Post id"
// @Success   200  {object}  messageResponse
// @Failure   401  {object}  messageResponse
// @Failure   404  {object}  messageResponse
// @Router    /api/post/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return denied("post", err)
	}
	metrics.PostInteractionsTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{Msg: "Post Removed!"})
}

// Like godoc
// @Summary   Like a post
// @Tags      post
// @Produce   json
// @Security  ApiKeyAuth
// @Param     id   path      string  true  "Post id"
// @Success   200  {array}   domain.Like
// @Failure   400  {object}  messageResponse
// @Failure   404  {object}  messageResponse
// @Router    /api/post/like/{id} [put]
func (h *PostHandler) Like(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	likes, err := h.service.Like(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	metrics.PostInteractionsTotal.WithLabelValues("like").Inc()
	return c.JSON(http.StatusOK, likes)
}

// Unlike godoc
// @Summary   Remove a like
// @Tags      post
// @Produce   json
// @Security  ApiKeyAuth
// @Param     id   path      string  true  "Post id"
// @Success   200  {array}   domain.Like
// @Failure   400  {object}  messageResponse
// @Failure   404  {object}  messageResponse
// @Router    /api/post/unlike/{id} [put]
func (h *PostHandler) Unlike(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	likes, err := h.service.Unlike(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	metrics.PostInteractionsTotal.WithLabelValues("unlike").Inc()
	return c.JSON(http.StatusOK, likes)
}

// Comment godoc
// @Summary   Comment on a post
// @Tags      post
// @Accept    json
// @Produce   json
// @Security  ApiKeyAuth
// @Param     id    path      string       true  "Post id"
// @Param     body  body      textRequest  true  "Comment text"
// @Success   200   {array}   domain.Comment
// @Failure   400   {object}  errorsResponse
// @Failure   404   {object}  messageResponse
// @Router    /api/post/comment/{id} [post]
func (h *PostHandler) Comment(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req textRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comments, err := h.service.Comment(c.Request().Context(), p, c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	metrics.PostInteractionsTotal.WithLabelValues("comment").Inc()
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment godoc
// @Summary   Remove a comment
// @Tags      post
// @Produce   json
// @Security  ApiKeyAuth
// @Param     id          path      string  true  "Post id"
// @Param     comment_id  path      string  true  "Comment id"
// @Success   200         {array}   domain.Comment
// @Failure   401         {object}  messageResponse
// @Failure   404         {object}  messageResponse
// @Router    /api/post/comment/{id}/{comment_id} [delete]
func (h *PostHandler) DeleteComment(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	comments, err := h.service.DeleteComment(c.Request().Context(), p, c.Param("id"), c.Param("comment_id"))
	if err != nil {
		return denied("comment", err)
	}
	metrics.PostInteractionsTotal.WithLabelValues("uncomment").Inc()
	return c.JSON(http.StatusOK, comments)
}
