package yandex

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Concert-Mate/Music-Service/internal/model"
	"github.com/Concert-Mate/Music-Service/pkg/buffer"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var concertDatetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

func extractConcerts(result gjson.Result) ([]model.Concert, error) {
	concerts := result.Get("concerts")
	if !concerts.IsArray() {
		return nil, errors.New(`key "concerts" is missing or not an array`)
	}

	items := concerts.Array()
	out := make([]model.Concert, 0, len(items))
	for i, item := range items {
		concert, err := extractConcert(item)
		if err != nil {
			return nil, errors.WithMessagef(err, "concert #%d", i)
		}
		out = append(out, concert)
	}
	return out, nil
}

func extractConcert(concert gjson.Result) (model.Concert, error) {
	if !concert.IsObject() {
		return model.Concert{}, errors.New("concert is not an object")
	}

	title, err := requiredString(concert, "concertTitle")
	if err != nil {
		return model.Concert{}, err
	}
	afishaURL, err := requiredString(concert, "afishaUrl")
	if err != nil {
		return model.Concert{}, err
	}
	rawDatetime, err := requiredString(concert, "datetime")
	if err != nil {
		return model.Concert{}, err
	}
	datetime, err := parseConcertDatetime(rawDatetime)
	if err != nil {
		return model.Concert{}, err
	}

	city, err := nullableString(concert, "city", true)
	if err != nil {
		return model.Concert{}, err
	}
	place, err := nullableString(concert, "place", false)
	if err != nil {
		return model.Concert{}, err
	}
	address, err := nullableString(concert, "address", true)
	if err != nil {
		return model.Concert{}, err
	}
	mapURL, err := nullableString(concert, "mapUrl", true)
	if err != nil {
		return model.Concert{}, err
	}

	images, err := optionalStrings(concert, "images")
	if err != nil {
		return model.Concert{}, err
	}
	minPrice, err := extractPrice(concert.Get("minPrice"))
	if err != nil {
		return model.Concert{}, err
	}
	artist, err := extractArtist(concert.Get("artist"))
	if err != nil {
		return model.Concert{}, err
	}

	return model.Concert{
		Title:     title,
		AfishaURL: afishaURL,
		City:      city,
		Place:     place,
		Address:   address,
		Datetime:  &datetime,
		MapURL:    mapURL,
		Images:    images,
		MinPrice:  minPrice,
		Artists:   []model.Artist{artist},
	}, nil
}

func extractPrice(price gjson.Result) (*model.Price, error) {
	if !truthy(price) {
		return nil, nil
	}

	value, err := requiredInt(price, "value")
	if err != nil {
		return nil, errors.WithMessage(err, "minPrice")
	}
	if value < 0 {
		return nil, fmt.Errorf("minPrice: negative value %d", value)
	}
	currency, err := requiredString(price, "currency")
	if err != nil {
		return nil, errors.WithMessage(err, "minPrice")
	}
	return &model.Price{Price: int(value), Currency: currency}, nil
}

func extractPlaylist(trackListURL string, playlist gjson.Result) (model.TrackList, error) {
	tracks := playlist.Get("tracks")
	if !tracks.IsArray() {
		return model.TrackList{}, errors.New(`key "tracks" is missing or not an array`)
	}

	artists := buffer.NewUniqueList[model.Artist](0)
	for i, shortTrack := range tracks.Array() {
		track := shortTrack.Get("track")
		if !track.IsObject() {
			return model.TrackList{}, fmt.Errorf(`track #%d: key "track" is missing or not an object`, i)
		}
		if err := collectArtists(track.Get("artists"), artists); err != nil {
			return model.TrackList{}, errors.WithMessagef(err, "track #%d", i)
		}
	}

	title, err := requiredString(playlist, "title")
	if err != nil {
		return model.TrackList{}, err
	}

	return model.TrackList{
		URL:      trackListURL,
		Title:    title,
		ImageURL: coverLink(playlist.Get("ogImage")),
		Artists:  artists.Values(),
	}, nil
}

func extractAlbum(trackListURL string, album gjson.Result) (model.TrackList, error) {
	artists := buffer.NewUniqueList[model.Artist](0)
	if err := collectArtists(album.Get("artists"), artists); err != nil {
		return model.TrackList{}, err
	}

	title, err := requiredString(album, "title")
	if err != nil {
		return model.TrackList{}, err
	}

	return model.TrackList{
		URL:      trackListURL,
		Title:    title,
		ImageURL: coverLink(album.Get("ogImage")),
		Artists:  artists.Values(),
	}, nil
}

func collectArtists(list gjson.Result, dst *buffer.UniqueList[model.Artist]) error {
	if !list.IsArray() {
		return errors.New(`key "artists" is missing or not an array`)
	}
	for _, item := range list.Array() {
		artist, err := extractArtist(item)
		if err != nil {
			return err
		}
		dst.AddIfNotExists(artist)
	}
	return nil
}

func extractArtist(artist gjson.Result) (model.Artist, error) {
	if !artist.IsObject() {
		return model.Artist{}, errors.New("artist is missing or not an object")
	}
	name, err := requiredString(artist, "name")
	if err != nil {
		return model.Artist{}, errors.WithMessage(err, "artist")
	}
	id, err := requiredInt(artist, "id")
	if err != nil {
		return model.Artist{}, errors.WithMessage(err, "artist")
	}
	if id < 0 {
		return model.Artist{}, fmt.Errorf("artist: negative id %d", id)
	}
	return model.Artist{Name: name, YandexMusicID: id}, nil
}

// coverLink turns an abstract cover URI such as
// "avatars.yandex.net/get-music-content/5966316/a134df77.a.23033323-1/%%"
// into a link to its 400x400 rendition.
func coverLink(ogImage gjson.Result) *string {
	if ogImage.Type != gjson.String || ogImage.Str == "" {
		return nil
	}
	uri := ogImage.Str
	if len(uri) >= 2 {
		uri = uri[:len(uri)-2]
	} else {
		uri = ""
	}
	link := "https://" + uri + "400x400"
	return &link
}

func parseConcertDatetime(raw string) (time.Time, error) {
	for _, layout := range concertDatetimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unexpected datetime format %q", raw)
}

func requiredString(obj gjson.Result, key string) (string, error) {
	v := obj.Get(key)
	if v.Type != gjson.String {
		return "", fmt.Errorf("key %q is missing or not a string", key)
	}
	return v.Str, nil
}

// nullableString returns nil for a null value. When required is set, the
// key itself must be present.
func nullableString(obj gjson.Result, key string, required bool) (*string, error) {
	v := obj.Get(key)
	switch {
	case !v.Exists():
		if required {
			return nil, fmt.Errorf("key %q is missing", key)
		}
		return nil, nil
	case v.Type == gjson.Null:
		return nil, nil
	case v.Type == gjson.String:
		s := v.Str
		return &s, nil
	default:
		return nil, fmt.Errorf("key %q is not a string", key)
	}
}

func requiredInt(obj gjson.Result, key string) (int64, error) {
	v := obj.Get(key)
	switch v.Type {
	case gjson.Number:
		return v.Int(), nil
	case gjson.String:
		n, err := strconv.ParseInt(v.Str, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("key %q is not an integer: %q", key, v.Str)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("key %q is missing or not an integer", key)
	}
}

func optionalStrings(obj gjson.Result, key string) ([]string, error) {
	v := obj.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return []string{}, nil
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("key %q is not an array", key)
	}
	items := v.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("key %q contains a non-string item", key)
		}
		out = append(out, item.Str)
	}
	return out, nil
}

// truthy reports whether v is present and not an empty or zero value.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	case gjson.JSON:
		if v.IsArray() {
			return len(v.Array()) > 0
		}
		return len(v.Map()) > 0
	}
	return false
}
