// Package router wires the HTTP surface of the service: the public
// redirect, the shortening and account endpoints, and the internal stats
// endpoint. It maps core outcomes to HTTP status codes; the core itself
// never renders anything.
package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/tinylinks/internal/auth"
	"github.com/patric-chuzhbe/tinylinks/internal/authenticator"
	"github.com/patric-chuzhbe/tinylinks/internal/gzippedhttp"
	"github.com/patric-chuzhbe/tinylinks/internal/ipchecker"
	"github.com/patric-chuzhbe/tinylinks/internal/logger"
	"github.com/patric-chuzhbe/tinylinks/internal/models"
	"github.com/patric-chuzhbe/tinylinks/internal/service"
)

// Router holds the collaborators the handlers need.
type Router struct {
	svc       *service.Service
	auth      authenticator.Authenticator
	ipChecker *ipchecker.IPChecker
	validate  *validator.Validate
}

// New assembles the chi mux with all routes and middleware.
func New(
	authMiddleware authenticator.Authenticator,
	ipChecker *ipchecker.IPChecker,
	svc *service.Service,
) *chi.Mux {
	theRouter := &Router{
		svc:       svc,
		auth:      authMiddleware,
		ipChecker: ipChecker,
		validate:  validator.New(),
	}

	mux := chi.NewRouter()
	mux.Use(logger.WithLoggingHTTPMiddleware)
	mux.Use(gzippedhttp.UngzipRequest)
	mux.Use(gzippedhttp.GzipResponse)
	mux.Use(authMiddleware.AuthenticateUser)

	mux.Post(`/`, theRouter.PostShorten)
	mux.Get(`/u/{short}`, theRouter.GetRedirecttofullurl)
	mux.Get(`/ping`, theRouter.GetPing)

	mux.Route(`/api`, func(api chi.Router) {
		api.Post(`/shorten`, theRouter.PostApishorten)
		api.Post(`/user/register`, theRouter.PostApiuserregister)
		api.Post(`/user/login`, theRouter.PostApiuserlogin)
		api.Post(`/user/logout`, theRouter.PostApiuserlogout)
		api.Get(`/user/urls`, theRouter.GetApiuserurls)
		api.Delete(`/user/urls`, theRouter.DeleteApiuserurls)
		api.Get(`/user/urls/{short}`, theRouter.GetApiuserurl)
		api.Put(`/user/urls/{short}`, theRouter.PutApiuserurl)
		api.Delete(`/user/urls/{short}`, theRouter.DeleteApiuserurl)
		api.Get(`/internal/stats`, theRouter.GetApiinternalstats)
	})

	return mux
}

// statusFromError translates the outcome taxonomy into HTTP status codes.
// NotFound and NotOwner stay distinct reasons internally even though a
// deployment could choose to render both as 404.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, models.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (theRouter *Router) writeError(response http.ResponseWriter, err error) {
	http.Error(response, err.Error(), statusFromError(err))
}

func (theRouter *Router) writeJSON(response http.ResponseWriter, status int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response:", err)
	}
}

func (theRouter *Router) decodeAndValidate(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return models.ErrInvalidInput
	}
	if err := theRouter.validate.Struct(target); err != nil {
		return models.ErrInvalidInput
	}

	return nil
}

// PostShorten shortens the first http(s) URL found in a text/plain body.
func (theRouter *Router) PostShorten(response http.ResponseWriter, request *http.Request) {
	body, err := io.ReadAll(request.Body)
	if err != nil {
		http.Error(response, err.Error(), http.StatusBadRequest)
		return
	}

	urlToShort, err := theRouter.svc.ExtractFirstURL(string(body))
	if err != nil {
		theRouter.writeError(response, err)
		return
	}

	shortURL, err := theRouter.svc.ShortenURL(
		request.Context(),
		auth.SessionFromContext(request.Context()),
		urlToShort,
	)
	if err != nil {
		theRouter.writeError(response, err)
		return
	}

	response.WriteHeader(http.StatusCreated)
	if _, err := response.Write([]byte(shortURL)); err != nil {
		logger.Log.Debugln("Error writing the response:", err)
	}
}

// PostApishorten is the JSON variant of PostShorten.
func (theRouter *Router) PostApishorten(response http.ResponseWriter, request *http.Request) {
	shortenRequest := models.ShortenRequest{}
	if err := theRouter.decodeAndValidate(request, &shortenRequest); err != nil {
		theRouter.writeError(response, err)
		return
	}

	shortURL, err := theRouter.svc.ShortenURL(
		request.Context(),
		auth.SessionFromContext(request.Context()),
		shortenRequest.URL,
	)
	if err != nil {
		theRouter.writeError(response, err)
		return
	}

	theRouter.writeJSON(response, http.StatusCreated, models.ShortenResponse{Result: shortURL})
}

// GetRedirecttofullurl is the public redirect endpoint. Anyone holding a
// short URL may follow it.
func (theRouter *Router) GetRedirecttofullurl(response http.ResponseWriter, request *http.Request) {
	short := chi.URLParam(request, "short")
	full, err := theRouter.svc.GetOriginalURL(request.Context(), short)
	if err != nil {
		theRouter.writeError(response, err)
		return
	}

	http.Redirect(response, request, full, http.StatusTemporaryRedirect)
}

// PostApiuserregister registers a user and, like the login endpoint,
// leaves the caller with a fresh session.
func (theRouter *Router) PostApiuserregister(response http.ResponseWriter, request *http.Request) {
	registerRequest := models.RegisterRequest{}
	if err := theRouter.decodeAndValidate(request, &registerRequest); err != nil {
		theRouter.writeError(response, err)
		return
	}

	usr, err := theRouter.svc.RegisterUser(request.Context(), registerRequest.Email, registerRequest.Password)
	if err != nil {
		theRouter.writeError(response, err)
		return
	}

	if err := theRouter.auth.IssueSession(response, usr.ID); err != nil {
		logger.Log.Debugln("Error issuing the session:", err)
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	theRouter.writeJSON(response, http.StatusOK, models.RegisterResponse{
		ID:    usr.ID,
		Email: usr.Email,
	})
}

// PostApiuserlogin verifies credentials and issues a session. The response
// never says whether the email or the password was the wrong half.
func (theRouter *Router) PostApiuserlogin(response http.ResponseWriter, request *http.Request) {
	loginRequest := models.LoginRequest{}
	if err := theRouter.decodeAndValidate(request, &loginRequest); err != nil {
		theRouter.writeError(response, err)
		return
	}

	usr, found, err := theRouter.svc.Authenticate(request.Context(), loginRequest.Email, loginRequest.Password)
	if err != nil {
		response.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(response, "login failed", http.StatusUnauthorized)
		return
	}

	if err := theRouter.auth.IssueSession(response, usr.ID); err != nil {
		logger.Log.Debugln("Error issuing the session:", err)
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	theRouter.writeJSON(response, http.StatusOK, models.RegisterResponse{
		ID:    usr.ID,
		Email: usr.Email,
	})
}

func (theRouter *Router) PostApiuserlogout(response http.ResponseWriter, request *http.Request) {
	theRouter.auth.ClearSession(response)
	response.WriteHeader(http.StatusOK)
}

// GetApiuserurls lists the caller's own mappings.
func (theRouter *Router) GetApiuserurls(response http.ResponseWriter, request *http.Request) {
	userUrls, err := theRouter.svc.GetUserURLs(request.Context(), auth.SessionFromContext(request.Context()))
	if err != nil {
		theRouter.writeError(response, err)
		return
	}

	if len(userUrls) == 0 {
		response.WriteHeader(http.StatusNoContent)
		return
	}

	theRouter.writeJSON(response, http.StatusOK, userUrls)
}

// GetApiuserurl returns one mapping, owner only.
func (theRouter *Router) GetApiuserurl(response http.ResponseWriter, request *http.Request) {
	mapping, err := theRouter.svc.GetURLDetails(
		request.Context(),
		auth.SessionFromContext(request.Context()),
		chi.URLParam(request, "short"),
	)
	if err != nil {
		theRouter.writeError(response, err)
		return
	}

	theRouter.writeJSON(response, http.StatusOK, models.UserURL{
		ShortURL:    theRouter.svc.GetShortURL(mapping.Short),
		OriginalURL: mapping.Full,
	})
}

// PutApiuserurl updates the target URL of an owned mapping.
func (theRouter *Router) PutApiuserurl(response http.ResponseWriter, request *http.Request) {
	updateRequest := models.UpdateURLRequest{}
	if err := theRouter.decodeAndValidate(request, &updateRequest); err != nil {
		theRouter.writeError(response, err)
		return
	}

	err := theRouter.svc.UpdateURL(
		request.Context(),
		auth.SessionFromContext(request.Context()),
		chi.URLParam(request, "short"),
		updateRequest.URL,
	)
	if err != nil {
		theRouter.writeError(response, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// DeleteApiuserurl removes an owned mapping synchronously.
func (theRouter *Router) DeleteApiuserurl(response http.ResponseWriter, request *http.Request) {
	err := theRouter.svc.DeleteURL(
		request.Context(),
		auth.SessionFromContext(request.Context()),
		chi.URLParam(request, "short"),
	)
	if err != nil {
		theRouter.writeError(response, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// DeleteApiuserurls accepts a batch of short URLs (or bare short keys) and
// queues them for background removal.
func (theRouter *Router) DeleteApiuserurls(response http.ResponseWriter, request *http.Request) {
	urlsToDelete := models.DeleteURLsRequest{}
	if err := json.NewDecoder(request.Body).Decode(&urlsToDelete); err != nil {
		theRouter.writeError(response, models.ErrInvalidInput)
		return
	}

	err := theRouter.svc.DeleteURLsAsync(
		request.Context(),
		auth.SessionFromContext(request.Context()),
		urlsToDelete,
	)
	if err != nil {
		theRouter.writeError(response, err)
		return
	}

	response.WriteHeader(http.StatusAccepted)
}

// GetApiinternalstats reports store totals to callers from the trusted
// subnet. It replaces the unauthenticated store dumps of early versions.
func (theRouter *Router) GetApiinternalstats(response http.ResponseWriter, request *http.Request) {
	if theRouter.ipChecker.IsTrustedSubnetEmpty() {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	clientIP, err := theRouter.ipChecker.GetClientIP(request)
	if err != nil || !theRouter.ipChecker.Check(clientIP) {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	stats, err := theRouter.svc.GetInternalStats(request.Context())
	if err != nil {
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	theRouter.writeJSON(response, http.StatusOK, stats)
}

func (theRouter *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := theRouter.svc.Ping(request.Context()); err != nil {
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}
