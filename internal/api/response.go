package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Concert-Mate/Music-Service/internal/model"
)

type ResponseCode int

const (
	CodeSuccess ResponseCode = iota
	CodeInternalError
	CodeArtistNotFound
	CodeTrackListNotFound
	CodeInvalidRequest
)

var responseCodeNames = map[ResponseCode]string{
	CodeSuccess:           "SUCCESS",
	CodeInternalError:     "INTERNAL_ERROR",
	CodeArtistNotFound:    "ARTIST_NOT_FOUND",
	CodeTrackListNotFound: "TRACK_LIST_NOT_FOUND",
	CodeInvalidRequest:    "INVALID_REQUEST",
}

func (c ResponseCode) String() string {
	if name, ok := responseCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// HTTPStatus maps a response code onto the transport status.
func (c ResponseCode) HTTPStatus() int {
	switch c {
	case CodeSuccess:
		return http.StatusOK
	case CodeArtistNotFound, CodeTrackListNotFound:
		return http.StatusNotFound
	case CodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type ResponseStatus struct {
	Code    ResponseCode `json:"code"`
	Message string       `json:"message"`
}

func newStatus(code ResponseCode) ResponseStatus {
	return ResponseStatus{Code: code, Message: code.String()}
}

type ConcertsResponse struct {
	Status   ResponseStatus  `json:"status"`
	Concerts []model.Concert `json:"concerts"`
}

type ArtistResponse struct {
	Status ResponseStatus `json:"status"`
	Artist *model.Artist  `json:"artist"`
}

type TrackListResponse struct {
	Status    ResponseStatus   `json:"status"`
	TrackList *model.TrackList `json:"track_list"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Can't send an error response after WriteHeader, just log it
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("error encoding response", "error", err)
	}
}
