package handlers

import (
	"net/http"

	"github.com/Jim-devENG/ispora-engine/internal/database"
	"github.com/Jim-devENG/ispora-engine/internal/envelope"
)

// Feed returns one page of the activity feed.
func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	number, err := intQuery(r, "page", 1)
	if err != nil {
		h.fail(w, r, "list feed", err)
		return
	}
	size, err := intQuery(r, "limit", database.DefaultPageSize)
	if err != nil {
		h.fail(w, r, "list feed", err)
		return
	}
	page := database.NewPage(number, size)

	items, total, err := h.db.ListFeed(r.Context(), page)
	if err != nil {
		h.fail(w, r, "list feed", err)
		return
	}

	envelope.Write(w, http.StatusOK, envelope.Paged(items, page.Number, page.Size, total))
}
