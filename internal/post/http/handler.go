package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	commonhttp "github.com/AlibekovAA/snapfeed/internal/common/http"
	"github.com/AlibekovAA/snapfeed/internal/common/jwtverify"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/media"
	"github.com/AlibekovAA/snapfeed/internal/post/domain"
	"github.com/AlibekovAA/snapfeed/internal/post/dto"
	"github.com/AlibekovAA/snapfeed/internal/post/service"
)

type createPostResponse struct {
	Message   string   `json:"message"`
	PostID    string   `json:"postId"`
	ImageURLs []string `json:"imageUrls"`
}

type feedResponse struct {
	Posts []dto.Post `json:"posts"`
}

type Handler struct {
	posts          *service.PostService
	verifier       *jwtverify.Verifier
	errors         *commonhttp.ErrorHandler
	log            *logger.Logger
	requestTimeout time.Duration
	uploadTimeout  time.Duration
}

func NewHandler(posts *service.PostService, verifier *jwtverify.Verifier, log *logger.Logger, requestTimeout, uploadTimeout time.Duration) *Handler {
	return &Handler{
		posts:          posts,
		verifier:       verifier,
		errors:         commonhttp.NewErrorHandler(log),
		log:            log,
		requestTimeout: requestTimeout,
		uploadTimeout:  uploadTimeout,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("/api/posts", h.verifier.Required(http.HandlerFunc(h.route)))
}

func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		commonhttp.WriteErrorCode(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", commonhttp.TraceIDFromContext(r.Context()))
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	claims, _ := jwtverify.FromContext(r.Context())

	if err := commonhttp.ParseForm(r, constants.MultipartMemoryBytes); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"user_id": claims.UserID,
			"action":  "create_post_invalid_form",
		}).Warnf("create post failed: invalid form: %v", err)
		commonhttp.WriteFormError(w, r, err, h.errors)
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	files, closeFiles, err := media.OpenMultipart(commonhttp.FormFiles(r, "images", "images[]"))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	defer closeFiles()

	ctx, cancel := context.WithTimeout(r.Context(), h.uploadTimeout)
	defer cancel()

	post, err := h.posts.CreatePost(ctx, service.CreatePostInput{
		Author: domain.Author{
			ID:        claims.UserID,
			Username:  claims.Username,
			Name:      claims.Name,
			AvatarURL: claims.AvatarURL,
		},
		Content: r.FormValue("content"),
		Images:  files,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	images := post.Images
	if images == nil {
		images = []string{}
	}
	commonhttp.WriteJSON(w, http.StatusCreated, createPostResponse{
		Message:   "Post created successfully",
		PostID:    string(post.ID),
		ImageURLs: images,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	items, err := h.posts.ListFeed(ctx)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, feedResponse{Posts: dto.FromFeed(items)})
}
