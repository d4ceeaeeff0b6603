package handlers

import (
	"net/http"
	"strings"

	"github.com/Jim-devENG/ispora-engine/internal/database"
)

type createSessionRequest struct {
	ProjectID       *string `json:"projectId"`
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	ScheduledDate   string  `json:"scheduledDate"`
	Duration        int     `json:"duration"`
	Type            string  `json:"type"`
	MeetingLink     *string `json:"meetingLink"`
	Location        *string `json:"location"`
	IsPublic        bool    `json:"isPublic"`
	MaxParticipants *int64  `json:"maxParticipants"`
	Tags            string  `json:"tags"`
	Agenda          string  `json:"agenda"`
	CreatorID       *string `json:"creatorId"`
}

func newCreateSessionRequest() createSessionRequest {
	return createSessionRequest{
		Duration: database.DefaultSessionDuration,
		Type:     database.DefaultSessionType,
	}
}

func (req createSessionRequest) session() (*database.Session, error) {
	title, err := requireString(req.Title, "title")
	if err != nil {
		return nil, err
	}
	scheduledAt, err := parseTime(req.ScheduledDate, "scheduledDate")
	if err != nil {
		return nil, err
	}
	if req.Duration <= 0 {
		return nil, ValidationError{Field: "duration", Message: "must be a positive number of minutes"}
	}
	if req.MaxParticipants != nil && *req.MaxParticipants < 1 {
		return nil, ValidationError{Field: "maxParticipants", Message: "must be at least 1"}
	}

	return &database.Session{
		ProjectID:       optionalString(req.ProjectID),
		Title:           title,
		Description:     optionalString(req.Description),
		ScheduledAt:     scheduledAt,
		Duration:        req.Duration,
		Status:          database.DefaultSessionStatus,
		Type:            strings.TrimSpace(req.Type),
		MeetingLink:     optionalString(req.MeetingLink),
		Location:        optionalString(req.Location),
		IsPublic:        req.IsPublic,
		MaxParticipants: req.MaxParticipants,
		Tags:            req.Tags,
		Agenda:          req.Agenda,
		CreatorID:       optionalString(req.CreatorID),
	}, nil
}

// ListSessions returns sessions filtered by projectId and status. A status of
// "all" is the same as no status.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.db.ListSessions(r.Context(), database.SessionFilter{
		ProjectID: optionalQuery(r, "projectId"),
		Status:    optionalQuery(r, "status"),
	})
	if err != nil {
		h.fail(w, r, "list sessions", err)
		return
	}
	h.jsonData(w, sessions)
}

// CreateSession schedules a session and returns its id. New sessions always
// start as upcoming.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	req := newCreateSessionRequest()
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, "create session", err)
		return
	}

	s, err := req.session()
	if err != nil {
		h.fail(w, r, "create session", err)
		return
	}

	id, err := h.db.CreateSession(r.Context(), s)
	if err != nil {
		h.fail(w, r, "create session", err)
		return
	}
	h.jsonData(w, map[string]string{"id": id})
}
