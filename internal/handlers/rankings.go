package handlers

import (
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/teachteam/internal/app"
	"github.com/shrimpsizemoose/teachteam/internal/ranking"
)

type RankingHandler struct {
	service *app.Service
}

func NewRankingHandler(service *app.Service) *RankingHandler {
	return &RankingHandler{
		service: service,
	}
}

type moveRequest struct {
	Tutor    string `json:"tutor"`
	Move     string `json:"move"`
	Position *int   `json:"position"`
}

func (h *RankingHandler) HandleMyRanking(w http.ResponseWriter, r *http.Request) {
	email, ok := lecturer(h.service, w, r)
	if !ok {
		return
	}

	list, err := h.service.GetRanking(r.PathValue("course"), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RankingHandler) HandleInitRanking(w http.ResponseWriter, r *http.Request) {
	email, ok := lecturer(h.service, w, r)
	if !ok {
		return
	}

	list, err := h.service.InitializeRanking(r.PathValue("course"), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RankingHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	email, ok := lecturer(h.service, w, r)
	if !ok {
		return
	}

	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	move, err := ranking.ParseMove(req.Move)
	if err != nil || req.Tutor == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tutor and a valid move are required"})
		return
	}

	position := 0
	if move == ranking.MovePosition {
		if req.Position == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "position is required for a position move"})
			return
		}
		position = *req.Position
	}

	list, err := h.service.MoveTutor(r.PathValue("course"), email, req.Tutor, move, position)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RankingHandler) HandleCourseRankings(w http.ResponseWriter, r *http.Request) {
	lists, err := h.service.CourseRankings(r.PathValue("course"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rankings": lists,
	})
}

// HandleAggregate serves the popularity chart. limit defaults to the
// configured chart size and limit=0 returns every shortlisted tutor.
func (h *RankingHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	opts := ranking.Options{
		Reverse: r.URL.Query().Get("reverse") == "true",
		Limit:   h.service.Config.Chart.DefaultLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			logger.Debug.Printf("Bad chart limit %q", raw)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		opts.Limit = limit
	}

	course := r.PathValue("course")
	scores, err := h.service.AggregateScores(course, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course": course,
		"chart":  scores,
	})
}
