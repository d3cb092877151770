package api

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/models"
	"github.com/rpupo63/portfolio-blog-backend/services"
)

const maxUploadSize = 10 << 20 // 10MB

type blogPostHandler struct {
	responder Responder
	logger    zerolog.Logger
	blogs     *services.BlogService
	storage   services.FileStorage
}

func newBlogPostHandler(blogs *services.BlogService, storage services.FileStorage) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder: NewResponder(logger),
		logger:    logger,
		blogs:     blogs,
		storage:   storage,
	}
}

// blogPostForm is the body of create and edit, sent either as JSON or as
// multipart form fields with an optional "thumbnail" file.
type blogPostForm struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Thumbnail   string `json:"thumbnail"`
	VideoURL    string `json:"videoUrl"`
	IsPublished *bool  `json:"isPublished"`

	// upload is the storage name of a thumbnail saved for this request.
	upload string
}

type blogPostListResponse struct {
	Success bool                  `json:"success"`
	Blogs   []models.BlogPostView `json:"blogs"`
}

type blogPostResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Blog    any    `json:"blog"`
}

type likeResponse struct {
	Success bool     `json:"success"`
	Likes   int      `json:"likes"`
	LikedBy []string `json:"likedBy"`
	Liked   bool     `json:"liked"`
}

type commentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	Success bool            `json:"success"`
	Comment *models.Comment `json:"comment"`
}

// readBlogPostForm fills a blogPostForm from JSON or multipart. An uploaded
// thumbnail file is stored and its URL replaces the thumbnail field.
func (h blogPostHandler) readBlogPostForm(w http.ResponseWriter, r *http.Request) (blogPostForm, error) {
	var form blogPostForm

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		err := decodeJSON(w, r, &form)
		return form, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return form, errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		return form, errs.NewMalformedPayloadError("multipart", err)
	}

	form.Title = r.FormValue("title")
	form.Subtitle = r.FormValue("subtitle")
	form.Description = r.FormValue("description")
	form.Category = r.FormValue("category")
	form.Thumbnail = r.FormValue("thumbnail")
	form.VideoURL = r.FormValue("videoUrl")
	if raw := r.FormValue("isPublished"); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			return form, errs.NewInvalidFieldError("isPublished", "must be true or false")
		}
		form.IsPublished = &published
	}

	file, header, err := r.FormFile("thumbnail")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return form, nil
	case err != nil:
		return form, errs.NewMalformedPayloadError("multipart", err)
	}
	defer file.Close()

	if h.storage == nil {
		return form, errs.NewBadRequestError("file uploads are not enabled")
	}

	name := "thumbnails/" + uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	url, err := h.storage.Save(r.Context(), name, header.Header.Get("Content-Type"), file)
	if err != nil {
		return form, errs.NewInternalErrorWithCause("failed to store thumbnail", err)
	}
	form.Thumbnail = url
	form.upload = name
	return form, nil
}

// discardUpload removes a thumbnail stored for a request that then failed.
func (h blogPostHandler) discardUpload(ctx context.Context, form blogPostForm) {
	if form.upload == "" {
		return
	}
	if err := h.storage.Delete(context.WithoutCancel(ctx), form.upload); err != nil {
		h.logger.Warn().Err(err).Str("file", form.upload).Msg("failed to remove unused thumbnail")
	}
}

// listBlogPosts returns every published post, newest first
// @Summary List published blog posts
// @Tags Blog Posts
// @Produce json
// @Success 200 {object} blogPostListResponse
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Router /api/blogs [get]
func (h blogPostHandler) listBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.blogs.ListPublished(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, blogPostListResponse{Success: true, Blogs: posts})
	}
}

// myBlogPosts returns the caller's posts, published or not
// @Summary List own blog posts
// @Tags Blog Posts
// @Produce json
// @Success 200 {object} blogPostListResponse
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Router /api/blogs/my [get]
func (h blogPostHandler) myBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := ctxGetIdentity(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		posts, err := h.blogs.MyPosts(r.Context(), identity.UserID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, blogPostListResponse{Success: true, Blogs: posts})
	}
}

// getBlogPost returns one post with its author and comments
// @Summary Get blog post
// @Tags Blog Posts
// @Produce json
// @Param blogPostID path string true "Blog Post ID"
// @Success 200 {object} blogPostResponse
// @Failure 404 {object} ErrorResponse "Blog post not found"
// @Router /api/blogs/{blogPostID} [get]
func (h blogPostHandler) getBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.blogs.GetByID(r.Context(), chi.URLParam(r, "blogPostID"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, blogPostResponse{Success: true, Blog: post})
	}
}

// createBlogPost publishes a new post authored by the caller
// @Summary Create blog post
// @Tags Blog Posts
// @Accept json,mpfd
// @Produce json
// @Param blogPost body blogPostForm true "Blog post fields"
// @Param thumbnail formData file false "Thumbnail image"
// @Success 201 {object} blogPostResponse
// @Failure 400 {object} ErrorResponse "Missing title or description"
// @Failure 403 {object} ErrorResponse "Caller is not an admin"
// @Router /api/blogs/create [post]
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := ctxGetIdentity(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		form, err := h.readBlogPostForm(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.blogs.Create(r.Context(), identity.UserID, services.CreatePostInput{
			Title:       form.Title,
			Description: form.Description,
			Subtitle:    form.Subtitle,
			Category:    form.Category,
			Thumbnail:   form.Thumbnail,
			VideoURL:    form.VideoURL,
		})
		if err != nil {
			h.discardUpload(r.Context(), form)
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, blogPostResponse{
			Success: true,
			Message: "Blog created successfully",
			Blog:    post,
		})
	}
}

// editBlogPost applies the supplied fields to a post
// @Summary Edit blog post
// @Tags Blog Posts
// @Accept json,mpfd
// @Produce json
// @Param blogPostID path string true "Blog Post ID"
// @Param blogPost body blogPostForm true "Fields to change"
// @Success 200 {object} blogPostResponse
// @Failure 403 {object} ErrorResponse "Caller is not an admin"
// @Failure 404 {object} ErrorResponse "Blog post not found"
// @Router /api/blogs/edit/{blogPostID} [put]
func (h blogPostHandler) editBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := h.readBlogPostForm(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.blogs.Edit(r.Context(), chi.URLParam(r, "blogPostID"), models.BlogPostPatch{
			Title:       form.Title,
			Subtitle:    form.Subtitle,
			Description: form.Description,
			Category:    form.Category,
			Thumbnail:   form.Thumbnail,
			VideoURL:    form.VideoURL,
			IsPublished: form.IsPublished,
		})
		if err != nil {
			h.discardUpload(r.Context(), form)
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, blogPostResponse{
			Success: true,
			Message: "Blog updated successfully",
			Blog:    post,
		})
	}
}

// deleteBlogPost removes a post; admins may only remove their own
// @Summary Delete blog post
// @Tags Blog Posts
// @Produce json
// @Param blogPostID path string true "Blog Post ID"
// @Success 200 {object} messageResponse
// @Failure 403 {object} ErrorResponse "Not allowed to delete this post"
// @Failure 404 {object} ErrorResponse "Blog post not found"
// @Router /api/blogs/{blogPostID} [delete]
func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := ctxGetIdentity(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.blogs.Delete(r.Context(), identity.UserID, chi.URLParam(r, "blogPostID")); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, messageResponse{
			Success: true,
			Message: "Blog deleted successfully",
		})
	}
}

// toggleLike likes the post, or unlikes it if the caller already did
// @Summary Toggle like
// @Tags Blog Posts
// @Produce json
// @Param blogPostID path string true "Blog Post ID"
// @Success 200 {object} likeResponse
// @Failure 404 {object} ErrorResponse "Blog post not found"
// @Router /api/blogs/like/{blogPostID} [put]
func (h blogPostHandler) toggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := ctxGetIdentity(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.blogs.ToggleLike(r.Context(), identity.UserID, chi.URLParam(r, "blogPostID"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, likeResponse{
			Success: true,
			Likes:   len(result.Likes),
			LikedBy: result.Likes,
			Liked:   result.Liked,
		})
	}
}

// addComment appends a comment by the caller
// @Summary Comment on blog post
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Param blogPostID path string true "Blog Post ID"
// @Param body body commentRequest true "Comment"
// @Success 201 {object} commentResponse
// @Failure 400 {object} ErrorResponse "Empty comment"
// @Failure 404 {object} ErrorResponse "Blog post not found"
// @Router /api/blogs/comment/{blogPostID} [post]
func (h blogPostHandler) addComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := ctxGetIdentity(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req commentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.blogs.AddComment(r.Context(), identity.UserID, chi.URLParam(r, "blogPostID"), req.Content)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, commentResponse{Success: true, Comment: comment})
	}
}
