// Package envelope defines the JSON shape shared by every API response.
package envelope

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Response is the uniform body returned by the API.
type Response struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the page carried in Data. Total counts every
// matching item, not just the ones on this page.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// OK wraps data in a success envelope.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Message is a success envelope carrying only a message.
func Message(msg string) Response {
	return Response{Success: true, Message: msg}
}

// Paged wraps one page of data together with its pagination block.
func Paged(data any, page, limit, total int) Response {
	return Response{
		Success:    true,
		Data:       data,
		Pagination: &Pagination{Page: page, Limit: limit, Total: total},
	}
}

// Fail builds an error envelope.
func Fail(msg string) Response {
	return Response{Success: false, Error: msg}
}

// Write encodes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
