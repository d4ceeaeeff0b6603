package handlers

import (
	"net/http"
	"strings"

	"github.com/Jim-devENG/ispora-engine/internal/database"
)

type createProjectRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	CreatorID   *string `json:"creator_id"`
}

// ListProjects returns every project, newest first. The mine parameter is
// accepted for client compatibility but not applied.
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.db.ListProjects(r.Context(), database.ProjectFilter{})
	if err != nil {
		h.fail(w, r, "list projects", err)
		return
	}
	h.jsonData(w, projects)
}

// CreateProject stores a project and returns its id.
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	req := createProjectRequest{Status: database.DefaultProjectStatus}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, "create project", err)
		return
	}

	title, err := requireString(req.Title, "title")
	if err != nil {
		h.fail(w, r, "create project", err)
		return
	}

	id, err := h.db.CreateProject(r.Context(), &database.Project{
		Title:       title,
		Description: optionalString(req.Description),
		Status:      strings.TrimSpace(req.Status),
		CreatorID:   optionalString(req.CreatorID),
	})
	if err != nil {
		h.fail(w, r, "create project", err)
		return
	}
	h.jsonData(w, map[string]string{"id": id})
}
