package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AlibekovAA/snapfeed/internal/auth/oauth"
	"github.com/AlibekovAA/snapfeed/internal/auth/service"
	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	commonhttp "github.com/AlibekovAA/snapfeed/internal/common/http"
	"github.com/AlibekovAA/snapfeed/internal/common/jwtverify"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
)

const (
	signinPagePath        = "/signin"
	credentialsErrorParam = "CredentialsSignin"
	oauthErrorParam       = "OAuthCallback"
	oauthStateCookiePath  = "/api/auth/callback"
)

type Config struct {
	Auth           *service.AuthService
	Sessions       *service.SessionIssuer
	Providers      *oauth.Registry
	Verifier       *jwtverify.Verifier
	Log            *logger.Logger
	CookieSecure   bool
	RequestTimeout time.Duration
}

type Handler struct {
	auth           *service.AuthService
	sessions       *service.SessionIssuer
	providers      *oauth.Registry
	verifier       *jwtverify.Verifier
	errors         *commonhttp.ErrorHandler
	log            *logger.Logger
	cookieSecure   bool
	requestTimeout time.Duration
}

func NewHandler(cfg Config) *Handler {
	providers := cfg.Providers
	if providers == nil {
		providers = oauth.NewRegistry()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return &Handler{
		auth:           cfg.Auth,
		sessions:       cfg.Sessions,
		providers:      providers,
		verifier:       cfg.Verifier,
		errors:         commonhttp.NewErrorHandler(cfg.Log),
		log:            cfg.Log,
		cookieSecure:   cfg.CookieSecure,
		requestTimeout: timeout,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	post := commonhttp.RequireMethod(http.MethodPost)
	get := commonhttp.RequireMethod(http.MethodGet)

	mux.HandleFunc("/api/auth/signup", post(h.signup))
	mux.HandleFunc("/api/auth/signin", post(h.signin))
	mux.HandleFunc("/api/auth/callback/credentials", post(h.signin))
	mux.HandleFunc("/api/auth/signout", post(h.signout))
	mux.Handle("/api/auth/session", h.verifier.Optional(get(h.session)))
	mux.HandleFunc("/api/auth/providers", get(h.listProviders))
	mux.HandleFunc("/api/auth/oauth/{provider}", get(h.oauthStart))
	mux.HandleFunc("/api/auth/callback/{provider}", get(h.oauthCallback))
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.writeDecodeError(w, r, err, "signup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	identity, err := h.auth.Signup(ctx, service.SignupInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, signupResponse{
		Message: "User created successfully",
		User: userResponse{
			ID:       identity.ID,
			Email:    identity.Email,
			Username: identity.Username,
			Name:     identity.Name,
		},
	})
}

// signin accepts either a JSON body or a browser form post. Form posts are
// answered with redirects instead of JSON.
func (h *Handler) signin(w http.ResponseWriter, r *http.Request) {
	form := !isJSON(r)

	req, err := readSigninRequest(r, form)
	if err != nil {
		h.writeDecodeError(w, r, err, "signin")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	identity, err := h.auth.Authenticate(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if form && errors.Is(err, service.ErrInvalidCredentials) {
			http.Redirect(w, r, signinPagePath+"?error="+credentialsErrorParam, http.StatusSeeOther)
			return
		}
		h.errors.HandleError(w, r, err)
		return
	}

	session, err := h.sessions.Issue(identity)
	if err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"user_id": identity.ID,
			"action":  "session_issue_failed",
		}).Errorf("failed to issue session: %v", err)
		h.errors.HandleError(w, r, err)
		return
	}
	jwtverify.SetSessionCookie(w, session.Token, session.ExpiresAt, h.cookieSecure)

	if form {
		http.Redirect(w, r, safeRedirect(req.CallbackURL), http.StatusSeeOther)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, signinResponse{User: toUserResponse(identity)})
}

func (h *Handler) signout(w http.ResponseWriter, r *http.Request) {
	jwtverify.ClearSessionCookie(w, h.cookieSecure)
	if isForm(r) {
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteJSON(w, http.StatusOK, sessionResponse{})
		return
	}

	user := toUserResponse(service.IdentityFromClaims(claims))
	commonhttp.WriteJSON(w, http.StatusOK, sessionResponse{
		User:    &user,
		Expires: time.Unix(claims.ExpiresAt, 0).UTC().Format(time.RFC3339),
	})
}

func (h *Handler) listProviders(w http.ResponseWriter, r *http.Request) {
	resp := providersResponse{
		Providers: []providerResponse{{
			ID:        "credentials",
			Type:      "credentials",
			SigninURL: "/api/auth/callback/credentials",
		}},
	}
	for _, name := range h.providers.Names() {
		resp.Providers = append(resp.Providers, providerResponse{
			ID:        name,
			Type:      "oauth",
			SigninURL: "/api/auth/oauth/" + name,
		})
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) oauthStart(w http.ResponseWriter, r *http.Request) {
	provider, err := h.providers.Get(r.PathValue("provider"))
	if err != nil {
		commonhttp.WriteErrorCode(w, http.StatusNotFound, commonhttp.CodeNotFound, "unknown provider", commonhttp.TraceIDFromContext(r.Context()))
		return
	}

	state := oauth.NewState()
	http.SetCookie(w, &http.Cookie{
		Name:     constants.OAuthStateCookieName,
		Value:    state,
		Path:     oauthStateCookiePath,
		MaxAge:   int(constants.OAuthStateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
}

func (h *Handler) oauthCallback(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")
	fields := logger.Fields{
		"provider": name,
		"action":   "oauth_callback",
	}

	provider, err := h.providers.Get(name)
	if err != nil {
		commonhttp.WriteErrorCode(w, http.StatusNotFound, commonhttp.CodeNotFound, "unknown provider", commonhttp.TraceIDFromContext(r.Context()))
		return
	}

	expected := ""
	if cookie, err := r.Cookie(constants.OAuthStateCookieName); err == nil {
		expected = cookie.Value
	}
	h.clearStateCookie(w)

	query := r.URL.Query()
	state := query.Get("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		h.log.WithFields(r.Context(), fields).Warn("oauth callback rejected: state mismatch")
		h.redirectSigninError(w, r)
		return
	}
	if providerErr := query.Get("error"); providerErr != "" {
		h.log.WithFields(r.Context(), fields).Warnf("oauth callback rejected by provider: %s", providerErr)
		h.redirectSigninError(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	profile, err := provider.Exchange(ctx, query.Get("code"))
	if err != nil {
		h.log.WithFields(r.Context(), fields).Warnf("oauth exchange failed: %v", err)
		h.redirectSigninError(w, r)
		return
	}

	identity, err := h.auth.FederatedSignIn(ctx, profile)
	if err != nil {
		h.log.WithFields(r.Context(), fields).Errorf("federated signin failed: %v", err)
		h.redirectSigninError(w, r)
		return
	}

	session, err := h.sessions.Issue(identity)
	if err != nil {
		h.log.WithFields(r.Context(), fields).Errorf("failed to issue session: %v", err)
		h.redirectSigninError(w, r)
		return
	}

	jwtverify.SetSessionCookie(w, session.Token, session.ExpiresAt, h.cookieSecure)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.OAuthStateCookieName,
		Value:    "",
		Path:     oauthStateCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) redirectSigninError(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, signinPagePath+"?error="+oauthErrorParam, http.StatusFound)
}

func (h *Handler) writeDecodeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if commonhttp.IsRequestTooLarge(err) {
		h.errors.HandleError(w, r, err)
		return
	}
	h.log.WithFields(r.Context(), logger.Fields{
		"action": action + "_invalid_body",
	}).Warnf("%s failed: invalid body: %v", action, err)
	if isJSON(r) {
		commonhttp.WriteErrorCode(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", commonhttp.TraceIDFromContext(r.Context()))
		return
	}
	commonhttp.WriteErrorCode(w, http.StatusBadRequest, commonhttp.CodeInvalidForm, "invalid form", commonhttp.TraceIDFromContext(r.Context()))
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data")
}

func readSigninRequest(r *http.Request, form bool) (signinRequest, error) {
	var req signinRequest
	if !form {
		err := commonhttp.DecodeJSON(r, &req)
		return req, err
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(constants.MultipartMemoryBytes); err != nil {
			return req, err
		}
	} else if err := r.ParseForm(); err != nil {
		return req, err
	}

	req.Email = r.PostFormValue("email")
	req.Password = r.PostFormValue("password")
	req.CallbackURL = r.PostFormValue("callbackUrl")
	return req, nil
}

// safeRedirect keeps redirects on this origin.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	if u, err := url.Parse(target); err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return target
}
