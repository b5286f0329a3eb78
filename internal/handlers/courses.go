package handlers

import (
	"net/http"

	"github.com/shrimpsizemoose/teachteam/internal/app"
	"github.com/shrimpsizemoose/teachteam/internal/models"
)

type CourseHandler struct {
	service *app.Service
}

func NewCourseHandler(service *app.Service) *CourseHandler {
	return &CourseHandler{
		service: service,
	}
}

func (h *CourseHandler) HandleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if !decode(w, r, &user) {
		return
	}
	if err := h.service.RegisterUser(user); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *CourseHandler) HandleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
	})
}

func (h *CourseHandler) HandleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var course models.Course
	if !decode(w, r, &course) {
		return
	}
	if err := h.service.CreateCourse(course); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) HandleGetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.service.GetCourse(r.PathValue("course"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) HandleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	var course models.Course
	if !decode(w, r, &course) {
		return
	}
	course.Code = r.PathValue("course")
	if err := h.service.UpdateCourse(course); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) HandleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCourse(r.PathValue("course")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) HandleListLecturers(w http.ResponseWriter, r *http.Request) {
	lecturers, err := h.service.ListCourseLecturers(r.PathValue("course"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lecturers": lecturers,
	})
}

func (h *CourseHandler) HandleAssignLecturer(w http.ResponseWriter, r *http.Request) {
	var req models.CourseLecturer
	if !decode(w, r, &req) {
		return
	}
	req.Course = r.PathValue("course")
	if err := h.service.AssignLecturer(req.Course, req.Lecturer); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *CourseHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var application models.TutorApplication
	if !decode(w, r, &application) {
		return
	}
	application.Course = r.PathValue("course")
	if err := h.service.Apply(application); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, application)
}

func (h *CourseHandler) HandleListApplications(w http.ResponseWriter, r *http.Request) {
	applications, err := h.service.ListApplications(r.PathValue("course"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applications": applications,
	})
}

func (h *CourseHandler) HandleAcceptApplication(w http.ResponseWriter, r *http.Request) {
	confirmed, err := h.service.AcceptApplication(r.PathValue("course"), r.PathValue("tutor"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmed)
}

func (h *CourseHandler) HandleRejectApplication(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RejectApplication(r.PathValue("course"), r.PathValue("tutor")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CourseHandler) HandleListConfirmed(w http.ResponseWriter, r *http.Request) {
	confirmed, err := h.service.ListConfirmedTutors(r.PathValue("course"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tutors": confirmed,
	})
}
