package http

import (
	"context"
	"net/http"
	"time"

	accountdomain "github.com/AlibekovAA/snapfeed/internal/account/domain"
	authdomain "github.com/AlibekovAA/snapfeed/internal/auth/domain"
	authservice "github.com/AlibekovAA/snapfeed/internal/auth/service"
	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	commonhttp "github.com/AlibekovAA/snapfeed/internal/common/http"
	"github.com/AlibekovAA/snapfeed/internal/common/jwtverify"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/media"
	"github.com/AlibekovAA/snapfeed/internal/profile/service"
)

// SessionIssuer refreshes the session after the profile changed so that the
// claims shown elsewhere stay current.
type SessionIssuer interface {
	Issue(identity authdomain.Identity) (authservice.Session, error)
}

type profileResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Bio          string `json:"bio"`
	ProfileImage string `json:"profileImage"`
}

type updateResponse struct {
	Message string          `json:"message"`
	User    profileResponse `json:"user"`
}

type Handler struct {
	profiles       *service.ProfileService
	sessions       SessionIssuer
	verifier       *jwtverify.Verifier
	errors         *commonhttp.ErrorHandler
	log            *logger.Logger
	cookieSecure   bool
	requestTimeout time.Duration
	uploadTimeout  time.Duration
}

type Config struct {
	Profiles       *service.ProfileService
	Sessions       SessionIssuer
	Verifier       *jwtverify.Verifier
	Log            *logger.Logger
	CookieSecure   bool
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
}

func NewHandler(cfg Config) *Handler {
	return &Handler{
		profiles:       cfg.Profiles,
		sessions:       cfg.Sessions,
		verifier:       cfg.Verifier,
		errors:         commonhttp.NewErrorHandler(cfg.Log),
		log:            cfg.Log,
		cookieSecure:   cfg.CookieSecure,
		requestTimeout: cfg.RequestTimeout,
		uploadTimeout:  cfg.UploadTimeout,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("/api/profile", h.verifier.Required(http.HandlerFunc(h.route)))
}

func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		commonhttp.WriteErrorCode(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", commonhttp.TraceIDFromContext(r.Context()))
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	claims, _ := jwtverify.FromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	account, err := h.profiles.GetProfile(ctx, claims.UserID)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, toProfileResponse(account))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	claims, _ := jwtverify.FromContext(r.Context())

	if err := commonhttp.ParseForm(r, constants.MultipartMemoryBytes); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"user_id": claims.UserID,
			"action":  "update_profile_invalid_form",
		}).Warnf("update profile failed: invalid form: %v", err)
		commonhttp.WriteFormError(w, r, err, h.errors)
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	input := service.UpdateInput{}
	if commonhttp.HasFormValue(r, "name") {
		name := r.FormValue("name")
		input.Name = &name
	}
	if commonhttp.HasFormValue(r, "bio") {
		bio := r.FormValue("bio")
		input.Bio = &bio
	}

	files, closeFiles, err := media.OpenMultipart(commonhttp.FormFiles(r, "profileImage"))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	defer closeFiles()
	if len(files) > 0 {
		input.Avatar = &files[0]
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.uploadTimeout)
	defer cancel()

	account, err := h.profiles.UpdateProfile(ctx, claims.UserID, input)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	if session, err := h.sessions.Issue(authdomain.IdentityFromAccount(account)); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"user_id": claims.UserID,
			"action":  "session_refresh_failed",
		}).Warnf("failed to refresh session after profile update: %v", err)
	} else {
		jwtverify.SetSessionCookie(w, session.Token, session.ExpiresAt, h.cookieSecure)
	}

	commonhttp.WriteJSON(w, http.StatusOK, updateResponse{
		Message: "Profile updated successfully",
		User:    toProfileResponse(account),
	})
}

func toProfileResponse(a accountdomain.Account) profileResponse {
	resp := profileResponse{
		ID:       string(a.ID),
		Email:    a.Email,
		Username: a.Username,
		Name:     a.Name,
	}
	if a.Bio != nil {
		resp.Bio = *a.Bio
	}
	if a.AvatarURL != nil {
		resp.ProfileImage = *a.AvatarURL
	}
	return resp
}
