package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Concert-Mate/Music-Service/internal/model"
	"github.com/Concert-Mate/Music-Service/internal/yandex"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
)

const healthCheckTimeout = 2 * time.Second

type musicService interface {
	Concerts(ctx context.Context, artistID int64) ([]model.Concert, error)
	Artist(ctx context.Context, artistID int64) (model.Artist, error)
	TrackList(ctx context.Context, url string) (model.TrackList, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	music musicService
	cache pinger
}

// NewRouter wires the HTTP routes. cache backs the /health probe.
func NewRouter(music musicService, cache pinger) http.Handler {
	h := &Handler{
		music: music,
		cache: cache,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog)
	r.Use(tracing)

	r.Get("/concerts", h.Concerts)
	r.Get("/artists", h.Artist)
	r.Get("/tracks-lists", h.TrackList)
	r.Get("/health", h.Health)

	r.Get("/openapi.json", serveOpenAPI)
	r.Get("/docs", serveDocs)

	return r
}

func (h *Handler) Concerts(w http.ResponseWriter, r *http.Request) {
	artistID, ok := parseArtistID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ConcertsResponse{Status: newStatus(CodeInvalidRequest)})
		return
	}

	concerts, err := h.music.Concerts(r.Context(), artistID)
	if err != nil {
		code := errorCode(err, CodeArtistNotFound)
		logFailure(r, code, err, "artist_id", artistID)
		writeJSON(w, code.HTTPStatus(), ConcertsResponse{Status: newStatus(code)})
		return
	}

	writeJSON(w, http.StatusOK, ConcertsResponse{
		Status:   newStatus(CodeSuccess),
		Concerts: concerts,
	})
}

func (h *Handler) Artist(w http.ResponseWriter, r *http.Request) {
	artistID, ok := parseArtistID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ArtistResponse{Status: newStatus(CodeInvalidRequest)})
		return
	}

	artist, err := h.music.Artist(r.Context(), artistID)
	if err != nil {
		code := errorCode(err, CodeArtistNotFound)
		logFailure(r, code, err, "artist_id", artistID)
		writeJSON(w, code.HTTPStatus(), ArtistResponse{Status: newStatus(code)})
		return
	}

	writeJSON(w, http.StatusOK, ArtistResponse{
		Status: newStatus(CodeSuccess),
		Artist: &artist,
	})
}

func (h *Handler) TrackList(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeJSON(w, http.StatusBadRequest, TrackListResponse{Status: newStatus(CodeInvalidRequest)})
		return
	}

	trackList, err := h.music.TrackList(r.Context(), url)
	if err != nil {
		code := errorCode(err, CodeTrackListNotFound)
		logFailure(r, code, err, "url", url)
		writeJSON(w, code.HTTPStatus(), TrackListResponse{Status: newStatus(code)})
		return
	}

	writeJSON(w, http.StatusOK, TrackListResponse{
		Status:    newStatus(CodeSuccess),
		TrackList: &trackList,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.cache.Ping(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func parseArtistID(r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("artist_id")
	artistID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || artistID < 0 {
		return 0, false
	}
	return artistID, true
}

func errorCode(err error, notFound ResponseCode) ResponseCode {
	if errors.Is(err, yandex.ErrNotFound) {
		return notFound
	}
	return CodeInternalError
}

func logFailure(r *http.Request, code ResponseCode, err error, args ...any) {
	args = append(args, "code", code.String(), "request_id", middleware.GetReqID(r.Context()), "error", err)
	if code == CodeInternalError {
		slog.Error("request failed", args...)
		return
	}
	slog.Info("request failed", args...)
}
