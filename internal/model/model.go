package model

import "time"

// Artist is comparable and is used as a set key when de-duplicating.
type Artist struct {
	Name          string `json:"name"`
	YandexMusicID int64  `json:"yandex_music_id"`
}

type Price struct {
	Price    int    `json:"price"`
	Currency string `json:"currency"`
}

type Concert struct {
	Title     string     `json:"title"`
	AfishaURL string     `json:"afisha_url"`
	City      *string    `json:"city"`
	Place     *string    `json:"place"`
	Address   *string    `json:"address"`
	Datetime  *time.Time `json:"datetime"`
	MapURL    *string    `json:"map_url"`
	Images    []string   `json:"images"`
	MinPrice  *Price     `json:"min_price"`
	Artists   []Artist   `json:"artists"`
}

// TrackList is a playlist or an album.
type TrackList struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	ImageURL *string  `json:"image_url"`
	Artists  []Artist `json:"artists"`
}
