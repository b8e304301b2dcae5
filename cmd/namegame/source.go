package main

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/namegame/internal/config"
	"github.com/vovakirdan/namegame/internal/game"
	"github.com/vovakirdan/namegame/internal/profile"
	"github.com/vovakirdan/namegame/internal/storage"
)

// openSource builds the profile source described by cfg: a file or the
// profiles API, memoized in memory and backed by the SQLite cache.
// The returned func closes the cache and is always safe to call.
func openSource(cfg config.Config, logger *log.Logger) (*profile.CachedSource, func()) {
	srcLogger := logger.WithPrefix("profiles")

	var upstream profile.Source
	if cfg.Profiles.File != "" {
		upstream = &profile.FileSource{
			Path:   config.ExpandHome(cfg.Profiles.File),
			Logger: srcLogger,
		}
	} else {
		upstream = profile.NewHTTPSource(cfg.Profiles.URL, cfg.Profiles.Timeout, srcLogger)
	}

	// The cache is optional; play on without it.
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("profile cache unavailable", "path", cfg.Storage.Path, "error", err)
		return newCachedSource(upstream, nil, cfg, srcLogger), func() {}
	}

	closer := func() {
		if err := store.Close(); err != nil {
			logger.Warn("cannot close profile cache", "error", err)
		}
	}
	return newCachedSource(upstream, store, cfg, srcLogger), closer
}

// newCachedSource only keeps lists big enough to fill a round.
func newCachedSource(upstream profile.Source, cache profile.Cache, cfg config.Config, logger *log.Logger) *profile.CachedSource {
	src := profile.NewCachedSource(upstream, cache, cfg.Profiles.CacheTTL, logger)
	src.MinCount = game.CandidateCount
	return src
}
