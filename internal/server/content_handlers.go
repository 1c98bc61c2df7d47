package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"essayons/internal/auth"
	"essayons/internal/content"
)

type contentResponse struct {
	*content.Content
	Attachments []content.Attachment `json:"attachments"`
}

func withAttachments(c *content.Content, atts []content.Attachment) contentResponse {
	if atts == nil {
		atts = []content.Attachment{}
	}
	return contentResponse{Content: c, Attachments: atts}
}

func filterFromQuery(r *http.Request) content.Filter {
	q := r.URL.Query()
	return content.Filter{
		Type:   content.Kind(q.Get("type")),
		Status: content.Status(q.Get("status")),
	}
}

// GET /api/content lists published items only.
func (s *Server) handleListPublished(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r)
	if f.Status != "" && f.Status != content.StatusPublished {
		respondJSON(w, http.StatusOK, []content.Content{})
		return
	}
	f.Status = content.StatusPublished
	items, err := s.content.List(r.Context(), f)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, emptyIfNil(items))
}

// GET /api/content/{slug}
func (s *Server) handleGetPublished(w http.ResponseWriter, r *http.Request) {
	c, atts, err := s.content.Published(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, withAttachments(c, atts))
}

// GET /api/admin/content
func (s *Server) handleAdminListContent(w http.ResponseWriter, r *http.Request) {
	items, err := s.content.List(r.Context(), filterFromQuery(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, emptyIfNil(items))
}

// GET /api/admin/content/{id}
func (s *Server) handleAdminGetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_id", "invalid content id")
		return
	}
	c, atts, err := s.content.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, withAttachments(c, atts))
}

// POST /api/admin/content
func (s *Server) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	var in content.Input
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	var authorID *int64
	if u, ok := auth.UserFromContext(r.Context()); ok {
		authorID = &u.ID
	}
	c, err := s.content.Create(r.Context(), in, authorID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// PATCH /api/admin/content/{id}
func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_id", "invalid content id")
		return
	}
	var p content.Patch
	if err := decodeJSON(w, r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	c, err := s.content.Update(r.Context(), id, p)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// DELETE /api/admin/content/{id}
func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_id", "invalid content id")
		return
	}
	if err := s.content.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// POST /api/admin/content/{id}/attachments
func (s *Server) handleCreateAttachment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_id", "invalid content id")
		return
	}
	var in content.AttachmentInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	in.ContentID = id
	a, err := s.content.AddAttachment(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

// DELETE /api/admin/attachments/{id}
func (s *Server) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_id", "invalid attachment id")
		return
	}
	if err := s.content.RemoveAttachment(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
