package yandex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Concert-Mate/Music-Service/internal/model"
	"github.com/Concert-Mate/Music-Service/internal/yandex/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResponse struct {
	status int
	body   string
}

// newStubAPI serves canned responses keyed by request path and records the
// paths it was asked for.
func newStubAPI(t *testing.T, responses map[string]stubResponse) (*Client, func() []string) {
	t.Helper()
	var (
		mu        sync.Mutex
		requested []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.EscapedPath())
		mu.Unlock()
		resp, ok := responses[r.URL.EscapedPath()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not-found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(srv.Close)

	snapshot := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), requested...)
	}
	return New(config.Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}), snapshot
}

const briefInfoBody = `{
  "result": {
    "artist": {"id": 41052, "name": "Lumen"},
    "concerts": [
      {
        "concertTitle": "Lumen. Big show",
        "afishaUrl": "https://afisha.yandex.ru/moscow/concert/lumen",
        "city": "Moscow",
        "place": "VK Stadium",
        "address": "Leningradsky prospekt, 80",
        "datetime": "2024-05-25T19:00:00+03:00",
        "mapUrl": "https://yandex.ru/maps/?pt=37.5,55.8",
        "images": ["https://avatars.mds.yandex.net/1", "https://avatars.mds.yandex.net/2"],
        "minPrice": {"value": 2500, "currency": "RUB"},
        "artist": {"id": 41052, "name": "Lumen"}
      },
      {
        "concertTitle": "Lumen. Acoustic",
        "afishaUrl": "https://afisha.yandex.ru/spb/concert/lumen",
        "city": null,
        "address": null,
        "datetime": "2024-06-01T20:00:00+0300",
        "mapUrl": null,
        "artist": {"id": 41052, "name": "Lumen"}
      }
    ]
  }
}`

func TestConcerts(t *testing.T) {
	client, requested := newStubAPI(t, map[string]stubResponse{
		"/artists/41052/brief-info": {status: http.StatusOK, body: briefInfoBody},
	})

	concerts, err := client.Concerts(context.Background(), 41052)
	require.NoError(t, err)
	require.Len(t, concerts, 2)
	assert.Equal(t, []string{"/artists/41052/brief-info"}, requested())

	lumen := model.Artist{Name: "Lumen", YandexMusicID: 41052}

	first := concerts[0]
	assert.Equal(t, "Lumen. Big show", first.Title)
	assert.Equal(t, "https://afisha.yandex.ru/moscow/concert/lumen", first.AfishaURL)
	require.NotNil(t, first.City)
	assert.Equal(t, "Moscow", *first.City)
	require.NotNil(t, first.Place)
	assert.Equal(t, "VK Stadium", *first.Place)
	require.NotNil(t, first.Datetime)
	assert.True(t, time.Date(2024, 5, 25, 16, 0, 0, 0, time.UTC).Equal(*first.Datetime))
	assert.Equal(t, []string{"https://avatars.mds.yandex.net/1", "https://avatars.mds.yandex.net/2"}, first.Images)
	assert.Equal(t, &model.Price{Price: 2500, Currency: "RUB"}, first.MinPrice)
	assert.Equal(t, []model.Artist{lumen}, first.Artists)

	second := concerts[1]
	assert.Nil(t, second.City)
	assert.Nil(t, second.Place)
	assert.Nil(t, second.Address)
	assert.Nil(t, second.MapURL)
	assert.Nil(t, second.MinPrice)
	assert.NotNil(t, second.Images)
	assert.Empty(t, second.Images)
	require.NotNil(t, second.Datetime)
	assert.True(t, time.Date(2024, 6, 1, 17, 0, 0, 0, time.UTC).Equal(*second.Datetime))
}

func TestConcertsErrors(t *testing.T) {
	tests := []struct {
		name    string
		resp    stubResponse
		wantErr error
	}{
		{
			name:    "artist payload has error",
			resp:    stubResponse{status: http.StatusOK, body: `{"result":{"artist":{"error":"not-found"}}}`},
			wantErr: ErrNotFound,
		},
		{
			name:    "client error status",
			resp:    stubResponse{status: http.StatusBadRequest, body: `{"error":"validate"}`},
			wantErr: ErrNotFound,
		},
		{
			name:    "client error with html body",
			resp:    stubResponse{status: http.StatusNotFound, body: `<html>nope</html>`},
			wantErr: ErrInternal,
		},
		{
			name:    "server error status",
			resp:    stubResponse{status: http.StatusBadGateway, body: `{}`},
			wantErr: ErrInternal,
		},
		{
			name:    "not json",
			resp:    stubResponse{status: http.StatusOK, body: `<html></html>`},
			wantErr: ErrInternal,
		},
		{
			name:    "missing result",
			resp:    stubResponse{status: http.StatusOK, body: `{"invocationInfo":{}}`},
			wantErr: ErrInternal,
		},
		{
			name:    "empty result",
			resp:    stubResponse{status: http.StatusOK, body: `{"result":{}}`},
			wantErr: ErrInternal,
		},
		{
			name:    "missing artist",
			resp:    stubResponse{status: http.StatusOK, body: `{"result":{"concerts":[]}}`},
			wantErr: ErrInternal,
		},
		{
			name:    "missing concerts",
			resp:    stubResponse{status: http.StatusOK, body: `{"result":{"artist":{"id":1,"name":"A"}}}`},
			wantErr: ErrInternal,
		},
		{
			name: "concert without required key",
			resp: stubResponse{status: http.StatusOK, body: `{"result":{"artist":{"id":1,"name":"A"},"concerts":[
				{"concertTitle":"t","afishaUrl":"u","city":"c","datetime":"2024-05-25T19:00:00+03:00","mapUrl":"m","artist":{"id":1,"name":"A"}}
			]}}`},
			wantErr: ErrInternal,
		},
		{
			name: "concert with bad datetime",
			resp: stubResponse{status: http.StatusOK, body: `{"result":{"artist":{"id":1,"name":"A"},"concerts":[
				{"concertTitle":"t","afishaUrl":"u","city":"c","address":"a","datetime":"25.05.2024","mapUrl":"m","artist":{"id":1,"name":"A"}}
			]}}`},
			wantErr: ErrInternal,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, _ := newStubAPI(t, map[string]stubResponse{
				"/artists/1/brief-info": test.resp,
			})

			concerts, err := client.Concerts(context.Background(), 1)
			assert.ErrorIs(t, err, test.wantErr)
			assert.Nil(t, concerts)
		})
	}
}

func TestConcertsEmptyList(t *testing.T) {
	client, _ := newStubAPI(t, map[string]stubResponse{
		"/artists/1/brief-info": {status: http.StatusOK, body: `{"result":{"artist":{"id":1,"name":"A"},"concerts":[]}}`},
	})

	concerts, err := client.Concerts(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, concerts)
	assert.Empty(t, concerts)
}

func TestArtist(t *testing.T) {
	client, _ := newStubAPI(t, map[string]stubResponse{
		"/artists/41052": {status: http.StatusOK, body: `{"result":{"artist":{"id":"41052","name":"Lumen","genres":["rock"]}}}`},
		"/artists/7":     {status: http.StatusOK, body: `{"result":{"artist":{"error":"not-found"}}}`},
	})

	artist, err := client.Artist(context.Background(), 41052)
	require.NoError(t, err)
	assert.Equal(t, model.Artist{Name: "Lumen", YandexMusicID: 41052}, artist)

	_, err = client.Artist(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

const playlistBody = `{
  "result": {
    "title": "Road trip",
    "ogImage": "avatars.yandex.net/get-music-content/5966316/a134df77.a.23033323-1/%%",
    "tracks": [
      {"id": 1, "track": {"id": "1", "artists": [{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]}},
      {"id": 2, "track": {"id": "2", "artists": [{"id": 2, "name": "B"}]}},
      {"id": 3, "track": {"id": "3", "artists": [{"id": 3, "name": "C"}, {"id": 1, "name": "A"}]}}
    ]
  }
}`

const albumBody = `{
  "result": {
    "title": "Single",
    "artists": [{"id": 5, "name": "E"}, {"id": 5, "name": "E"}, {"id": 6, "name": "F"}]
  }
}`

func TestTrackList(t *testing.T) {
	wantCover := "https://avatars.yandex.net/get-music-content/5966316/a134df77.a.23033323-1/400x400"

	tests := []struct {
		name          string
		url           string
		wantRequested string
		want          model.TrackList
	}{
		{
			name:          "playlist",
			url:           "https://music.yandex.ru/users/music-blog/playlists/2531",
			wantRequested: "/users/music-blog/playlists/2531",
			want: model.TrackList{
				URL:      "https://music.yandex.ru/users/music-blog/playlists/2531",
				Title:    "Road trip",
				ImageURL: &wantCover,
				Artists: []model.Artist{
					{Name: "A", YandexMusicID: 1},
					{Name: "B", YandexMusicID: 2},
					{Name: "C", YandexMusicID: 3},
				},
			},
		},
		{
			name:          "album",
			url:           "https://music.yandex.ru/album/123",
			wantRequested: "/albums/123",
			want: model.TrackList{
				URL:      "https://music.yandex.ru/album/123",
				Title:    "Single",
				ImageURL: nil,
				Artists: []model.Artist{
					{Name: "E", YandexMusicID: 5},
					{Name: "F", YandexMusicID: 6},
				},
			},
		},
		{
			name:          "playlist share link",
			url:           "https://music.yandex.ru/users/music-blog/playlists/2531?utm_medium=copy_link",
			wantRequested: "/users/music-blog/playlists/2531",
			want: model.TrackList{
				URL:      "https://music.yandex.ru/users/music-blog/playlists/2531?utm_medium=copy_link",
				Title:    "Road trip",
				ImageURL: &wantCover,
				Artists: []model.Artist{
					{Name: "A", YandexMusicID: 1},
					{Name: "B", YandexMusicID: 2},
					{Name: "C", YandexMusicID: 3},
				},
			},
		},
		{
			name:          "album share link with fragment",
			url:           "https://music.yandex.ru/album/123?utm_source=web&utm_medium=copy_link#tracks",
			wantRequested: "/albums/123",
			want: model.TrackList{
				URL:      "https://music.yandex.ru/album/123?utm_source=web&utm_medium=copy_link#tracks",
				Title:    "Single",
				ImageURL: nil,
				Artists: []model.Artist{
					{Name: "E", YandexMusicID: 5},
					{Name: "F", YandexMusicID: 6},
				},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, requested := newStubAPI(t, map[string]stubResponse{
				"/users/music-blog/playlists/2531": {status: http.StatusOK, body: playlistBody},
				"/albums/123":                      {status: http.StatusOK, body: albumBody},
			})

			got, err := client.TrackList(context.Background(), test.url)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
			assert.Equal(t, []string{test.wantRequested}, requested())
		})
	}
}

func TestTrackListErrors(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		wantErr       error
		wantRequested int
	}{
		{
			name:          "unrecognised url",
			url:           "https://music.yandex.ru/artist/41052",
			wantErr:       ErrNotFound,
			wantRequested: 0,
		},
		{
			name:          "malformed url",
			url:           "https://music.yandex.ru/album/%zz",
			wantErr:       ErrNotFound,
			wantRequested: 0,
		},
		{
			name:          "empty url",
			url:           "",
			wantErr:       ErrNotFound,
			wantRequested: 0,
		},
		{
			name:          "private playlist",
			url:           "https://music.yandex.ru/users/someone/playlists/3",
			wantErr:       ErrNotFound,
			wantRequested: 1,
		},
		{
			name:          "album payload has error",
			url:           "https://music.yandex.ru/album/404",
			wantErr:       ErrNotFound,
			wantRequested: 1,
		},
		{
			name:          "malformed album",
			url:           "https://music.yandex.ru/album/500",
			wantErr:       ErrInternal,
			wantRequested: 1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, requested := newStubAPI(t, map[string]stubResponse{
				"/albums/404": {status: http.StatusOK, body: `{"result":{"error":"not-found"}}`},
				"/albums/500": {status: http.StatusOK, body: `{"result":{"title":"no artists"}}`},
			})

			_, err := client.TrackList(context.Background(), test.url)
			assert.ErrorIs(t, err, test.wantErr)
			assert.Len(t, requested(), test.wantRequested)
		})
	}
}

func TestTrackListEscapesPathSegments(t *testing.T) {
	client, requested := newStubAPI(t, nil)

	_, err := client.TrackList(context.Background(), "https://music.yandex.ru/album/1%3Fx=..%2F..%2Fadmin")
	assert.ErrorIs(t, err, ErrNotFound)
	require.Len(t, requested(), 1)
	assert.Equal(t, "/albums/1%3Fx=..%2F..%2Fadmin", requested()[0])
}

func TestFetchHonoursContext(t *testing.T) {
	client, _ := newStubAPI(t, map[string]stubResponse{
		"/artists/1": {status: http.StatusOK, body: `{"result":{"artist":{"id":1,"name":"A"}}}`},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Artist(ctx, 1)
	assert.ErrorIs(t, err, ErrInternal)
}
