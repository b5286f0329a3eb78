package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/teachteam/internal/app"
)

type ShortlistHandler struct {
	service *app.Service
}

func NewShortlistHandler(service *app.Service) *ShortlistHandler {
	return &ShortlistHandler{
		service: service,
	}
}

func (h *ShortlistHandler) HandleGetShortlist(w http.ResponseWriter, r *http.Request) {
	course := r.PathValue("course")
	if _, err := h.service.GetCourse(course); err != nil {
		writeError(w, r, err)
		return
	}

	shortlist, err := h.service.GetShortlist(course)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"shortlist": shortlist,
	})
}

func (h *ShortlistHandler) HandleAddToShortlist(w http.ResponseWriter, r *http.Request) {
	if _, ok := lecturer(h.service, w, r); !ok {
		return
	}

	var req struct {
		Tutor string `json:"tutor"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Tutor == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tutor is required"})
		return
	}

	course := r.PathValue("course")
	if err := h.service.AddToShortlist(course, req.Tutor); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"course": course,
		"tutor":  req.Tutor,
	})
}

func (h *ShortlistHandler) HandleRemoveFromShortlist(w http.ResponseWriter, r *http.Request) {
	if _, ok := lecturer(h.service, w, r); !ok {
		return
	}

	if err := h.service.RemoveFromShortlist(r.PathValue("course"), r.PathValue("tutor")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShortlistHandler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.ListNotes(r.PathValue("course"), r.PathValue("tutor"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notes": notes,
	})
}

func (h *ShortlistHandler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	email, ok := lecturer(h.service, w, r)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if !decode(w, r, &req) {
		return
	}

	note, err := h.service.AddNote(r.PathValue("course"), r.PathValue("tutor"), email, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}
