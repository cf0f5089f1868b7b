package yandex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/Concert-Mate/Music-Service/internal/model"
	"github.com/Concert-Mate/Music-Service/internal/yandex/config"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Concert-Mate/Music-Service/internal/yandex"

var (
	// ErrNotFound means the artist, playlist or album does not exist upstream.
	ErrNotFound = errors.New("not found")
	// ErrInternal means the upstream failed or answered with an unexpected payload.
	ErrInternal = errors.New("internal service error")
)

var (
	playlistURLPattern = regexp.MustCompile(`^.*/users/(\S+)/playlists/(\S+)$`)
	albumURLPattern    = regexp.MustCompile(`^.*/album/(\S+)$`)
)

// Client reads the public Yandex Music JSON API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

func New(cfg config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		tracer: otel.Tracer(tracerName),
	}
}

// Concerts returns the upcoming concerts of the artist.
func (c *Client) Concerts(ctx context.Context, artistID int64) ([]model.Concert, error) {
	slog.Info("parsing concerts", "artist_id", artistID)

	uri := fmt.Sprintf("/artists/%d/brief-info", artistID)
	result, err := c.fetchArtistData(ctx, uri, fmt.Sprintf("artist %d", artistID))
	if err != nil {
		return nil, err
	}

	concerts, err := extractConcerts(result)
	if err != nil {
		slog.Warn("parsing concerts failed", "artist_id", artistID, "error", err)
		return nil, errors.Wrapf(ErrInternal, "parsing concerts of artist %d failed: %v", artistID, err)
	}
	slog.Info("parsing concerts succeeded", "artist_id", artistID, "count", len(concerts))
	return concerts, nil
}

// Artist returns basic information about the artist.
func (c *Client) Artist(ctx context.Context, artistID int64) (model.Artist, error) {
	slog.Info("parsing artist", "artist_id", artistID)

	uri := fmt.Sprintf("/artists/%d", artistID)
	result, err := c.fetchArtistData(ctx, uri, fmt.Sprintf("artist %d", artistID))
	if err != nil {
		return model.Artist{}, err
	}

	artist, err := extractArtist(result.Get("artist"))
	if err != nil {
		slog.Warn("parsing artist failed", "artist_id", artistID, "error", err)
		return model.Artist{}, errors.Wrapf(ErrInternal, "parsing info about artist %d failed: %v", artistID, err)
	}
	slog.Info("parsing artist succeeded", "artist_id", artistID)
	return artist, nil
}

// TrackList resolves a playlist or album link from music.yandex.ru.
func (c *Client) TrackList(ctx context.Context, trackListURL string) (model.TrackList, error) {
	slog.Info("parsing track list", "url", trackListURL)

	// Share links carry a query string (?utm_source=...), only the path
	// identifies the track list.
	parsed, err := url.Parse(trackListURL)
	if err != nil {
		slog.Info("track list has malformed URL", "url", trackListURL, "error", err)
		return model.TrackList{}, errors.Wrapf(ErrNotFound, "track list %s has incorrect URL", trackListURL)
	}

	if m := playlistURLPattern.FindStringSubmatch(parsed.Path); m != nil {
		return c.playlist(ctx, trackListURL, m[1], m[2])
	}
	if m := albumURLPattern.FindStringSubmatch(parsed.Path); m != nil {
		return c.album(ctx, trackListURL, m[1])
	}

	slog.Info("track list has incorrect URL", "url", trackListURL)
	return model.TrackList{}, errors.Wrapf(ErrNotFound, "track list %s has incorrect URL", trackListURL)
}

func (c *Client) playlist(ctx context.Context, trackListURL, userID, playlistID string) (model.TrackList, error) {
	uri := fmt.Sprintf("/users/%s/playlists/%s", url.PathEscape(userID), url.PathEscape(playlistID))
	result, err := c.fetch(ctx, uri, "playlist "+trackListURL)
	if err != nil {
		return model.TrackList{}, err
	}

	trackList, err := extractPlaylist(trackListURL, result)
	if err != nil {
		slog.Warn("parsing playlist failed", "url", trackListURL, "error", err)
		return model.TrackList{}, errors.Wrapf(ErrInternal, "parsing playlist %s failed: %v", trackListURL, err)
	}
	slog.Info("parsing playlist succeeded", "url", trackListURL)
	return trackList, nil
}

func (c *Client) album(ctx context.Context, trackListURL, albumID string) (model.TrackList, error) {
	uri := fmt.Sprintf("/albums/%s", url.PathEscape(albumID))
	result, err := c.fetch(ctx, uri, "album "+trackListURL)
	if err != nil {
		return model.TrackList{}, err
	}

	if truthy(result.Get("error")) {
		slog.Info("album payload contains error", "url", trackListURL, "error", result.Get("error").Raw)
		return model.TrackList{}, errors.Wrapf(ErrNotFound, "album %s", trackListURL)
	}

	trackList, err := extractAlbum(trackListURL, result)
	if err != nil {
		slog.Warn("parsing album failed", "url", trackListURL, "error", err)
		return model.TrackList{}, errors.Wrapf(ErrInternal, "parsing album %s failed: %v", trackListURL, err)
	}
	slog.Info("parsing album succeeded", "url", trackListURL)
	return trackList, nil
}

// fetchArtistData checks the artist payload on top of fetch: the API
// answers 200 with an "error" field inside "artist" for unknown artists.
func (c *Client) fetchArtistData(ctx context.Context, uri, subject string) (gjson.Result, error) {
	result, err := c.fetch(ctx, uri, subject)
	if err != nil {
		return gjson.Result{}, err
	}

	artist := result.Get("artist")
	if !artist.Exists() || artist.Type == gjson.Null {
		slog.Warn("response does not contain artist", "uri", uri)
		return gjson.Result{}, errors.Wrapf(ErrInternal, `response from %s does not contain key "artist"`, uri)
	}
	if truthy(artist.Get("error")) {
		slog.Info("artist not found", "uri", uri)
		return gjson.Result{}, errors.Wrap(ErrNotFound, subject)
	}
	return result, nil
}

// fetch downloads uri and returns its "result" object.
func (c *Client) fetch(ctx context.Context, uri, subject string) (gjson.Result, error) {
	ctx, span := c.tracer.Start(ctx, "yandex.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("yandex.uri", uri)),
	)
	defer span.End()

	result, err := c.doFetch(ctx, uri, subject)
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, ErrNotFound) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	return result, err
}

func (c *Client) doFetch(ctx context.Context, uri, subject string) (gjson.Result, error) {
	slog.Debug("fetching data", "uri", uri)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+uri, nil)
	if err != nil {
		return gjson.Result{}, errors.Wrapf(ErrInternal, "building request to %s failed: %v", uri, err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("downloading JSON failed", "uri", uri, "error", err)
		return gjson.Result{}, errors.Wrapf(ErrInternal, "downloading JSON from %s failed: %v", uri, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("reading response failed", "uri", uri, "error", err)
		return gjson.Result{}, errors.Wrapf(ErrInternal, "downloading JSON from %s failed: %v", uri, err)
	}
	slog.Debug("received response", "uri", uri, "status", resp.StatusCode)

	if !gjson.ValidBytes(body) {
		slog.Warn("response is not JSON", "uri", uri, "status", resp.StatusCode)
		return gjson.Result{}, errors.Wrapf(ErrInternal, "downloading JSON from %s failed: invalid JSON", uri)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		result := gjson.GetBytes(body, "result")
		if truthy(result) {
			return result, nil
		}
		slog.Warn(`key "result" not found in response`, "uri", uri)
		return gjson.Result{}, errors.Wrapf(ErrInternal, `key "result" not found in response from %s`, uri)
	case resp.StatusCode >= 400 && resp.StatusCode <= 499:
		// Client errors come back for unknown or private track lists.
		return gjson.Result{}, errors.Wrap(ErrNotFound, subject)
	default:
		return gjson.Result{}, errors.Wrapf(ErrInternal, `yandex music API returned "%s" from %s`, resp.Status, uri)
	}
}
