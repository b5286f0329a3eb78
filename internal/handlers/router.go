package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/teachteam/internal/app"
)

func NewRouter(service *app.Service) *http.ServeMux {
	courses := NewCourseHandler(service)
	shortlist := NewShortlistHandler(service)
	rankings := NewRankingHandler(service)

	mux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, Instrument(h))
	}

	route("POST /api/v1/users", courses.HandleRegisterUser)

	route("GET /api/v1/courses", courses.HandleListCourses)
	route("POST /api/v1/courses", courses.HandleCreateCourse)
	route("GET /api/v1/courses/{course}", courses.HandleGetCourse)
	route("PUT /api/v1/courses/{course}", courses.HandleUpdateCourse)
	route("DELETE /api/v1/courses/{course}", courses.HandleDeleteCourse)
	route("GET /api/v1/courses/{course}/lecturers", courses.HandleListLecturers)
	route("POST /api/v1/courses/{course}/lecturers", courses.HandleAssignLecturer)

	route("GET /api/v1/courses/{course}/applications", courses.HandleListApplications)
	route("POST /api/v1/courses/{course}/applications", courses.HandleApply)
	route("POST /api/v1/courses/{course}/applications/{tutor}/accept", courses.HandleAcceptApplication)
	route("POST /api/v1/courses/{course}/applications/{tutor}/reject", courses.HandleRejectApplication)
	route("GET /api/v1/courses/{course}/confirmed", courses.HandleListConfirmed)

	route("GET /api/v1/courses/{course}/shortlist", shortlist.HandleGetShortlist)
	route("POST /api/v1/courses/{course}/shortlist", shortlist.HandleAddToShortlist)
	route("DELETE /api/v1/courses/{course}/shortlist/{tutor}", shortlist.HandleRemoveFromShortlist)
	route("GET /api/v1/courses/{course}/shortlist/{tutor}/notes", shortlist.HandleListNotes)
	route("POST /api/v1/courses/{course}/shortlist/{tutor}/notes", shortlist.HandleAddNote)

	route("GET /api/v1/courses/{course}/rankings", rankings.HandleCourseRankings)
	route("GET /api/v1/courses/{course}/rankings/me", rankings.HandleMyRanking)
	route("POST /api/v1/courses/{course}/rankings/me/init", rankings.HandleInitRanking)
	route("POST /api/v1/courses/{course}/rankings/me/move", rankings.HandleMove)
	route("GET /api/v1/courses/{course}/aggregate", rankings.HandleAggregate)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := service.Healthy(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}
