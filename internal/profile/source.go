package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultURL is the public profiles endpoint.
const DefaultURL = "https://namegame.willowtreeapps.com/api/v1.0/profiles"

// Source supplies validated profiles.
type Source interface {
	Profiles(ctx context.Context) ([]Profile, error)
}

// Cache persists the last good profile list between runs.
type Cache interface {
	SaveProfiles(ctx context.Context, profiles []Profile) error
	LoadProfiles(ctx context.Context) ([]Profile, time.Time, error)
}

// HTTPSource fetches profiles from the profiles API.
type HTTPSource struct {
	URL    string
	Client *http.Client
	Logger *log.Logger
}

// NewHTTPSource creates an HTTP source with the given request timeout.
func NewHTTPSource(url string, timeout time.Duration, logger *log.Logger) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

// Profiles fetches, decodes and filters the profile list.
func (s *HTTPSource) Profiles(ctx context.Context) ([]Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("profile: invalid url %q: %w", s.URL, err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile: cannot fetch profiles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("profile: unexpected status %s from %s", resp.Status, s.URL)
	}

	return decode(resp.Body, s.URL, s.Logger)
}

// FileSource reads profiles from a local JSON file in the API format.
type FileSource struct {
	Path   string
	Logger *log.Logger
}

// Profiles reads, decodes and filters the file.
func (s *FileSource) Profiles(_ context.Context) ([]Profile, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("profile: cannot open %s: %w", s.Path, err)
	}
	defer f.Close()

	return decode(f, s.Path, s.Logger)
}

func decode(r io.Reader, origin string, logger *log.Logger) ([]Profile, error) {
	var raw []Profile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("profile: cannot decode profiles from %s: %w", origin, err)
	}

	valid := Filter(raw)
	if logger != nil {
		logger.Info("loaded profiles", "source", origin, "valid", len(valid), "total", len(raw))
	}
	return valid, nil
}

// CachedSource memoizes an upstream source in memory and falls back to a
// persistent cache when the upstream fails. A fetch with fewer than
// MinCount profiles is not memoized or persisted, so a short answer never
// replaces the last good list.
type CachedSource struct {
	Upstream Source
	Cache    Cache // Optional
	TTL      time.Duration
	MinCount int // Minimum usable list size, values below 1 mean 1
	Logger   *log.Logger

	mu        sync.Mutex
	profiles  []Profile
	fetchedAt time.Time
	now       func() time.Time
}

// NewCachedSource wraps upstream with an in-memory TTL and optional cache.
func NewCachedSource(upstream Source, cache Cache, ttl time.Duration, logger *log.Logger) *CachedSource {
	return &CachedSource{
		Upstream: upstream,
		Cache:    cache,
		TTL:      ttl,
		Logger:   logger,
	}
}

// Profiles returns the memoized list while fresh, otherwise refetches.
func (s *CachedSource) Profiles(ctx context.Context) ([]Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if s.profiles != nil && s.TTL > 0 && now.Sub(s.fetchedAt) < s.TTL {
		return clone(s.profiles), nil
	}

	profiles, err := s.Upstream.Profiles(ctx)
	if err == nil && len(profiles) >= s.minCount() {
		s.profiles = profiles
		s.fetchedAt = now
		if s.Cache != nil {
			if saveErr := s.Cache.SaveProfiles(ctx, profiles); saveErr != nil && s.Logger != nil {
				s.Logger.Warn("could not cache profiles", "error", saveErr)
			}
		}
		return clone(profiles), nil
	}

	if err == nil {
		// Short list: prefer a better cached one, else hand it back as is.
		if cached, cachedAt := s.loadCache(ctx); len(cached) > len(profiles) {
			if s.Logger != nil {
				s.Logger.Warn("profile fetch returned too few profiles, using cached profiles",
					"fetched", len(profiles),
					"count", len(cached),
					"cached_at", cachedAt.Format(time.RFC3339),
				)
			}
			return clone(cached), nil
		}
		return clone(profiles), nil
	}

	if s.Cache == nil {
		return nil, err
	}

	cached, cachedAt, cacheErr := s.Cache.LoadProfiles(ctx)
	if cacheErr != nil {
		return nil, errors.Join(err, cacheErr)
	}
	if len(cached) == 0 {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Warn("profile fetch failed, using cached profiles",
			"error", err,
			"count", len(cached),
			"cached_at", cachedAt.Format(time.RFC3339),
		)
	}
	return clone(cached), nil
}

func (s *CachedSource) minCount() int {
	if s.MinCount < 1 {
		return 1
	}
	return s.MinCount
}

// loadCache reads the persistent cache, ignoring errors.
func (s *CachedSource) loadCache(ctx context.Context) ([]Profile, time.Time) {
	if s.Cache == nil {
		return nil, time.Time{}
	}
	cached, cachedAt, err := s.Cache.LoadProfiles(ctx)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("could not read profile cache", "error", err)
		}
		return nil, time.Time{}
	}
	return cached, cachedAt
}

// Invalidate drops the in-memory copy so the next call refetches.
func (s *CachedSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = nil
	s.fetchedAt = time.Time{}
}

func (s *CachedSource) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func clone(profiles []Profile) []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}
