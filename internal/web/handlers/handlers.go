package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/Jim-devENG/ispora-engine/internal/auth"
	"github.com/Jim-devENG/ispora-engine/internal/database"
	"github.com/Jim-devENG/ispora-engine/internal/envelope"
	"github.com/Jim-devENG/ispora-engine/internal/metrics"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handlers contains all HTTP handlers
type Handlers struct {
	db      *database.DB
	devKeys *auth.DevKeyService
	metrics *metrics.Metrics
	started time.Time
	now     func() time.Time
}

// New creates a new Handlers instance. m may be nil.
func New(db *database.DB, devKeys *auth.DevKeyService, m *metrics.Metrics) *Handlers {
	return &Handlers{
		db:      db,
		devKeys: devKeys,
		metrics: m,
		started: time.Now(),
		now:     time.Now,
	}
}

// SetClock replaces the clock used for timestamps in responses.
func (h *Handlers) SetClock(now func() time.Time) {
	h.now = now
}

// jsonError sends a JSON error response
func (h *Handlers) jsonError(w http.ResponseWriter, message string, status int) {
	envelope.Write(w, status, envelope.Fail(message))
}

// jsonSuccess sends a JSON success response carrying only a message
func (h *Handlers) jsonSuccess(w http.ResponseWriter, message string) {
	envelope.Write(w, http.StatusOK, envelope.Message(message))
}

// jsonData sends data in a success envelope
func (h *Handlers) jsonData(w http.ResponseWriter, data any) {
	envelope.Write(w, http.StatusOK, envelope.OK(data))
}

// fail maps an error to a status code and writes the error envelope.
//
//	ValidationError            -> 400
//	auth.ErrInvalidDevKey      -> 401
//	database.ErrConflict       -> 500
//	database.ErrUnknownColumn  -> 500
//	anything else              -> 500
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve ValidationError
	status := http.StatusInternalServerError
	kind := "internal"

	switch {
	case errors.As(err, &ve):
		status, kind = http.StatusBadRequest, "validation"
	case errors.Is(err, auth.ErrInvalidDevKey):
		status, kind = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, database.ErrConflict):
		kind = "conflict"
	case errors.Is(err, database.ErrUnknownColumn):
		kind = "unknown_column"
	}

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("op", op).
		Str("kind", kind).
		Str("request_id", chimiddleware.GetReqID(r.Context())).
		Msg("Request failed")

	h.metrics.StoreError(kind)
	h.jsonError(w, err.Error(), status)
}

// decodeJSON reads the request body into v. v should already hold defaults;
// fields absent from the body keep them.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ValidationError{Field: "body", Message: "request body is required"}
		}
		return ValidationError{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// timestamp formats t the way every response reports times.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
