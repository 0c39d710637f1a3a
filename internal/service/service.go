// Package service wires the user directory, the URL registry and the access
// controller into the operations the transport layer consumes.
package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/tinylinks/internal/access"
	"github.com/patric-chuzhbe/tinylinks/internal/models"
	"github.com/patric-chuzhbe/tinylinks/internal/user"
)

type userDirectory interface {
	Register(ctx context.Context, email, password string) (*user.User, error)

	VerifyCredentials(ctx context.Context, email, password string) (*user.User, bool, error)
}

type urlRegistry interface {
	Create(ctx context.Context, userID, full string) (*models.URLMapping, error)

	Get(ctx context.Context, short string) (*models.URLMapping, bool, error)

	ListByOwner(ctx context.Context, userID string) ([]models.URLMapping, error)

	Update(ctx context.Context, short, newFull string) error

	Delete(ctx context.Context, short string) error
}

type accessController interface {
	Authorize(
		ctx context.Context,
		session access.Session,
		short string,
		op access.Operation,
	) (*models.URLMapping, error)

	RequireAuthenticated(session access.Session) error
}

type urlsRemover interface {
	EnqueueJob(job *models.URLDeleteJob)
}

type statsKeeper interface {
	GetNumberOfShortenedURLs(ctx context.Context) (int64, error)

	GetNumberOfUsers(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// ErrInvalidURLInRequest is returned when the request carries no usable
// http(s) URL.
var ErrInvalidURLInRequest = fmt.Errorf("%w: there is no valid URL substring in the request", models.ErrInvalidInput)

var urlPattern = regexp.MustCompile(`\bhttps?://\S+\b`)

type Service struct {
	users        userDirectory
	urls         urlRegistry
	access       accessController
	urlsRemover  urlsRemover
	stats        statsKeeper
	pinger       pinger
	shortURLBase string
}

func New(
	users userDirectory,
	urls urlRegistry,
	accessController accessController,
	urlsRemover urlsRemover,
	stats statsKeeper,
	pinger pinger,
	shortURLBase string,
) *Service {
	return &Service{
		users:        users,
		urls:         urls,
		access:       accessController,
		urlsRemover:  urlsRemover,
		stats:        stats,
		pinger:       pinger,
		shortURLBase: shortURLBase,
	}
}

// RegisterUser registers a new user with the directory.
func (s *Service) RegisterUser(ctx context.Context, email, password string) (*user.User, error) {
	return s.users.Register(ctx, email, password)
}

// Authenticate verifies the email and password pair. found == false covers
// both an unknown email and a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*user.User, bool, error) {
	return s.users.VerifyCredentials(ctx, email, password)
}

// ShortenURL shortens a given URL and links it to the session's user.
func (s *Service) ShortenURL(ctx context.Context, session access.Session, urlToShort string) (string, error) {
	if err := s.access.RequireAuthenticated(session); err != nil {
		return "", err
	}

	if !isValidURL(urlToShort) {
		return "", ErrInvalidURLInRequest
	}

	mapping, err := s.urls.Create(ctx, session.UserID, urlToShort)
	if err != nil {
		return "", err
	}

	return s.GetShortURL(mapping.Short), nil
}

// GetOriginalURL resolves a short key for the public redirect endpoint.
// No authentication is required to follow an existing short URL.
func (s *Service) GetOriginalURL(ctx context.Context, short string) (string, error) {
	mapping, found, err := s.urls.Get(ctx, short)
	if err != nil {
		return "", err
	}
	if !found {
		return "", models.ErrNotFound
	}

	return mapping.Full, nil
}

// GetUserURLs lists the session user's own mappings. Mappings of other
// users never appear in the result.
func (s *Service) GetUserURLs(ctx context.Context, session access.Session) (models.UserUrls, error) {
	if err := s.access.RequireAuthenticated(session); err != nil {
		return nil, err
	}

	mappings, err := s.urls.ListByOwner(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	userUrls := funk.Map(mappings, func(mapping models.URLMapping) models.UserURL {
		return models.UserURL{
			ShortURL:    s.GetShortURL(mapping.Short),
			OriginalURL: mapping.Full,
		}
	}).([]models.UserURL)

	return models.UserUrls(userUrls), nil
}

// GetURLDetails returns a single mapping after an ownership check.
func (s *Service) GetURLDetails(ctx context.Context, session access.Session, short string) (*models.URLMapping, error) {
	return s.access.Authorize(ctx, session, short, access.OpRead)
}

// UpdateURL replaces the target of an owned mapping. Short key and owner
// stay as they are.
func (s *Service) UpdateURL(ctx context.Context, session access.Session, short, newFull string) error {
	if !isValidURL(newFull) {
		return ErrInvalidURLInRequest
	}

	if _, err := s.access.Authorize(ctx, session, short, access.OpUpdate); err != nil {
		return err
	}

	return s.urls.Update(ctx, short, newFull)
}

// DeleteURL removes an owned mapping synchronously.
func (s *Service) DeleteURL(ctx context.Context, session access.Session, short string) error {
	if _, err := s.access.Authorize(ctx, session, short, access.OpDelete); err != nil {
		return err
	}

	return s.urls.Delete(ctx, short)
}

// DeleteURLsAsync enqueues a batch of the session user's short keys for
// background removal. Keys the user does not own are dropped by the store.
func (s *Service) DeleteURLsAsync(ctx context.Context, session access.Session, urls models.DeleteURLsRequest) error {
	if err := s.access.RequireAuthenticated(session); err != nil {
		return err
	}

	s.urlsRemover.EnqueueJob(&models.URLDeleteJob{
		UserID:       session.UserID,
		URLsToDelete: funk.Map(urls, s.GetShortURLKey).([]string),
	})

	return nil
}

// GetInternalStats returns statistics such as total shortened URLs and user count.
func (s *Service) GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error) {
	urls, err := s.stats.GetNumberOfShortenedURLs(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	users, err := s.stats.GetNumberOfUsers(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	return models.InternalStatsResponse{
		URLs:  urls,
		Users: users,
	}, nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.pinger.Ping(ctx)
}

func (s *Service) GetShortURL(shortKey string) string {
	return s.shortURLBase + "/u/" + shortKey
}

// GetShortURLKey is the inverse of GetShortURL. It also accepts a bare
// short key, so clients may submit either form for deletion.
func (s *Service) GetShortURLKey(shortURL string) string {
	if shortURL == "" {
		return ""
	}
	key := shortURL
	if s.shortURLBase != "" {
		key = strings.TrimPrefix(key, strings.TrimRight(s.shortURLBase, "/"))
	}
	key = strings.TrimPrefix(key, "/u")
	return strings.TrimPrefix(key, "/")
}

// ExtractFirstURL picks the first http(s) URL substring out of a free-form
// request body.
func (s *Service) ExtractFirstURL(urlToShort string) (string, error) {
	match := urlPattern.FindString(urlToShort)
	if match == "" {
		return "", ErrInvalidURLInRequest
	}

	if !isValidURL(match) {
		return "", ErrInvalidURLInRequest
	}

	return match, nil
}

func isValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil &&
		(u.Scheme == "http" || u.Scheme == "https") &&
		u.Host != ""
}
