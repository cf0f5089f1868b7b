package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/Concert-Mate/Music-Service/internal/model"
)

type upstream interface {
	Concerts(ctx context.Context, artistID int64) ([]model.Concert, error)
	Artist(ctx context.Context, artistID int64) (model.Artist, error)
	TrackList(ctx context.Context, url string) (model.TrackList, error)
}

type store interface {
	Key(parts ...string) string
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

type Expirations struct {
	Concerts   time.Duration
	TrackLists time.Duration
}

// Music serves upstream data through a read-through cache. Only successful
// results are cached; cache failures are logged and bypassed.
type Music struct {
	upstream    upstream
	store       store
	expirations Expirations
}

func NewMusic(upstream upstream, store store, expirations Expirations) *Music {
	return &Music{
		upstream:    upstream,
		store:       store,
		expirations: expirations,
	}
}

func (m *Music) Concerts(ctx context.Context, artistID int64) ([]model.Concert, error) {
	key := m.store.Key("concerts", strconv.FormatInt(artistID, 10))

	var concerts []model.Concert
	if m.lookup(ctx, key, &concerts) {
		return concerts, nil
	}

	concerts, err := m.upstream.Concerts(ctx, artistID)
	if err != nil {
		return nil, err
	}
	m.save(ctx, key, concerts, m.expirations.Concerts)
	return concerts, nil
}

func (m *Music) Artist(ctx context.Context, artistID int64) (model.Artist, error) {
	key := m.store.Key("artists", strconv.FormatInt(artistID, 10))

	var artist model.Artist
	if m.lookup(ctx, key, &artist) {
		return artist, nil
	}

	artist, err := m.upstream.Artist(ctx, artistID)
	if err != nil {
		return model.Artist{}, err
	}
	m.save(ctx, key, artist, m.expirations.TrackLists)
	return artist, nil
}

func (m *Music) TrackList(ctx context.Context, url string) (model.TrackList, error) {
	key := m.store.Key("track-lists", url)

	var trackList model.TrackList
	if m.lookup(ctx, key, &trackList) {
		return trackList, nil
	}

	trackList, err := m.upstream.TrackList(ctx, url)
	if err != nil {
		return model.TrackList{}, err
	}
	m.save(ctx, key, trackList, m.expirations.TrackLists)
	return trackList, nil
}

func (m *Music) lookup(ctx context.Context, key string, dst any) bool {
	ok, err := m.store.Get(ctx, key, dst)
	if err != nil {
		slog.Warn("cache lookup failed, falling back to upstream", "key", key, "error", err)
		return false
	}
	if ok {
		slog.Debug("cache hit", "key", key)
	} else {
		slog.Debug("cache miss", "key", key)
	}
	return ok
}

func (m *Music) save(ctx context.Context, key string, v any, ttl time.Duration) {
	if err := m.store.Set(ctx, key, v, ttl); err != nil {
		slog.Warn("cache store failed", "key", key, "error", err)
		return
	}
	slog.Debug("cache set", "key", key, "ttl", ttl)
}
