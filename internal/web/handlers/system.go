package handlers

import (
	"net/http"
	"time"

	"github.com/Jim-devENG/ispora-engine/internal/database"
	"github.com/Jim-devENG/ispora-engine/internal/envelope"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
}

// Health reports liveness. It does not touch the database.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	envelope.Write(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: timestamp(now),
		Uptime:    now.Sub(h.started).Round(time.Second).String(),
	})
}

type corsTestResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// CORSTest lets the web client confirm cross-origin calls work.
func (h *Handlers) CORSTest(w http.ResponseWriter, r *http.Request) {
	envelope.Write(w, http.StatusOK, corsTestResponse{
		Success:   true,
		Message:   "CORS test successful!",
		Timestamp: timestamp(h.now()),
	})
}

// VerifyDevKey grants developer access when the presented key matches.
func (h *Handlers) VerifyDevKey(w http.ResponseWriter, r *http.Request) {
	if err := h.devKeys.Validate(r); err != nil {
		h.fail(w, r, "verify dev key", err)
		return
	}
	h.jsonSuccess(w, "Dev access granted")
}

// Notifications returns a fixed welcome set. The filter query parameter is
// accepted and ignored; stored notifications are not served here yet.
func (h *Handlers) Notifications(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	welcome := "Your account has been created successfully."
	created := "You have created a new project: 'My First Project'"

	h.jsonData(w, []database.Notification{
		{
			ID:        "notif_1",
			UserID:    "user_1",
			Title:     "Welcome to iSpora!",
			Message:   &welcome,
			Type:      "info",
			CreatedAt: now,
		},
		{
			ID:        "notif_2",
			UserID:    "user_1",
			Title:     "New Project Created",
			Message:   &created,
			Type:      "success",
			CreatedAt: now,
		},
	})
}
