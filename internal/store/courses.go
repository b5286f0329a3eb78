package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/teachteam/internal/models"
	"github.com/shrimpsizemoose/teachteam/internal/terrors"
)

func (s *BaseStore) UpsertUser(user models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.DB.NamedExec(`
		INSERT INTO users (email, name, role, created_at)
		VALUES (:email, :name, :role, :created_at)
		ON CONFLICT(email) DO UPDATE SET
		name = :name,
		role = :role
	`, user)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (s *BaseStore) GetUser(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Get(&user, s.Converter(`
		SELECT email, name, role, created_at
		FROM users
		WHERE email = ?
	`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) CreateCourse(course models.Course) error {
	res, err := s.DB.NamedExec(`
		INSERT INTO courses (code, title, full_time_friendly, part_time_friendly)
		VALUES (:code, :title, :full_time_friendly, :part_time_friendly)
		ON CONFLICT(code) DO NOTHING
	`, course)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", course.Code, terrors.ErrCourseAlreadyExists)
	}
	return nil
}

func (s *BaseStore) UpdateCourse(course models.Course) error {
	res, err := s.DB.NamedExec(`
		UPDATE courses SET
		title = :title,
		full_time_friendly = :full_time_friendly,
		part_time_friendly = :part_time_friendly
		WHERE code = :code
	`, course)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", course.Code, terrors.ErrCourseNotFound)
	}
	return nil
}

// DeleteCourse removes the course together with everything hanging off it.
func (s *BaseStore) DeleteCourse(code string) error {
	return s.inTx(func(tx *sqlx.Tx) error {
		if err := s.lockCourse(tx, code); err != nil {
			return err
		}
		for _, table := range []string{
			"shortlist_notes",
			"lecturer_rankings",
			"ranking_lists",
			"shortlisted_tutors",
			"tutor_applications",
			"confirmed_tutors",
			"course_lecturers",
		} {
			if _, err := tx.Exec(s.Converter(`DELETE FROM `+table+` WHERE course_code = ?`), code); err != nil {
				return fmt.Errorf("failed to clean %s: %w", table, err)
			}
		}
		if _, err := tx.Exec(s.Converter(`DELETE FROM courses WHERE code = ?`), code); err != nil {
			return fmt.Errorf("failed to delete course: %w", err)
		}
		return nil
	})
}

func (s *BaseStore) GetCourse(code string) (*models.Course, error) {
	var course models.Course
	err := s.DB.Get(&course, s.Converter(`
		SELECT code, title, full_time_friendly, part_time_friendly
		FROM courses
		WHERE code = ?
	`), code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

func (s *BaseStore) ListCourses() ([]models.Course, error) {
	courses := []models.Course{}
	err := s.DB.Select(&courses, `
		SELECT code, title, full_time_friendly, part_time_friendly
		FROM courses
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *BaseStore) AssignLecturer(course, lecturer string) error {
	return s.inTx(func(tx *sqlx.Tx) error {
		if err := s.requireCourse(tx, course); err != nil {
			return err
		}
		if err := s.requireRole(tx, lecturer, models.RoleLecturer); err != nil {
			return err
		}

		res, err := tx.Exec(s.Converter(`
			INSERT INTO course_lecturers (course_code, lecturer_email)
			VALUES (?, ?)
			ON CONFLICT(course_code, lecturer_email) DO NOTHING
		`), course, lecturer)
		if err != nil {
			return fmt.Errorf("failed to assign lecturer: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%s already lectures %s: %w", lecturer, course, terrors.ErrAlreadyExists)
		}
		return nil
	})
}

func (s *BaseStore) IsCourseLecturer(course, lecturer string) (bool, error) {
	return s.isCourseLecturer(s.DB, course, lecturer)
}

func (s *BaseStore) ListCourseLecturers(course string) ([]string, error) {
	lecturers := []string{}
	err := s.DB.Select(&lecturers, s.Converter(`
		SELECT lecturer_email
		FROM course_lecturers
		WHERE course_code = ?
		ORDER BY lecturer_email
	`), course)
	if err != nil {
		return nil, fmt.Errorf("failed to list lecturers: %w", err)
	}
	return lecturers, nil
}

func (s *BaseStore) CreateApplication(application models.TutorApplication) error {
	if application.AppliedAt.IsZero() {
		application.AppliedAt = time.Now().UTC()
	}
	return s.inTx(func(tx *sqlx.Tx) error {
		if err := s.requireCourse(tx, application.Course); err != nil {
			return err
		}
		if err := s.requireRole(tx, application.Tutor, models.RoleTutor); err != nil {
			return err
		}

		res, err := tx.NamedExec(`
			INSERT INTO tutor_applications (course_code, tutor_email, lab_assistant, applied_at)
			VALUES (:course_code, :tutor_email, :lab_assistant, :applied_at)
			ON CONFLICT(course_code, tutor_email) DO NOTHING
		`, application)
		if err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%s/%s: %w", application.Course, application.Tutor, terrors.ErrApplicationAlreadyExists)
		}
		return nil
	})
}

func (s *BaseStore) GetApplication(course, tutor string) (*models.TutorApplication, error) {
	return s.getApplication(s.DB, course, tutor)
}

func (s *BaseStore) ListApplications(course string) ([]models.TutorApplication, error) {
	applications := []models.TutorApplication{}
	err := s.DB.Select(&applications, s.Converter(`
		SELECT course_code, tutor_email, lab_assistant, applied_at
		FROM tutor_applications
		WHERE course_code = ?
		ORDER BY applied_at, tutor_email
	`), course)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return applications, nil
}

// RejectApplication drops the application and, if the tutor was shortlisted,
// the shortlist entry with its rankings.
func (s *BaseStore) RejectApplication(course, tutor string) error {
	return s.inTx(func(tx *sqlx.Tx) error {
		if err := s.lockCourse(tx, course); err != nil {
			return err
		}
		res, err := tx.Exec(s.Converter(`
			DELETE FROM tutor_applications
			WHERE course_code = ? AND tutor_email = ?
		`), course, tutor)
		if err != nil {
			return fmt.Errorf("failed to delete application: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%s/%s: %w", course, tutor, terrors.ErrApplicationNotFound)
		}
		return s.removeShortlisted(tx, course, tutor, true)
	})
}

// AcceptApplication turns the application into a confirmed tutor and clears
// the tutor from the shortlist.
func (s *BaseStore) AcceptApplication(course, tutor string) (*models.ConfirmedTutor, error) {
	var confirmed models.ConfirmedTutor
	err := s.inTx(func(tx *sqlx.Tx) error {
		if err := s.lockCourse(tx, course); err != nil {
			return err
		}
		application, err := s.getApplication(tx, course, tutor)
		if err != nil {
			return err
		}
		if application == nil {
			return fmt.Errorf("%s/%s: %w", course, tutor, terrors.ErrApplicationNotFound)
		}

		if _, err := tx.Exec(s.Converter(`
			DELETE FROM tutor_applications
			WHERE course_code = ? AND tutor_email = ?
		`), course, tutor); err != nil {
			return fmt.Errorf("failed to delete application: %w", err)
		}
		if err := s.removeShortlisted(tx, course, tutor, true); err != nil {
			return err
		}

		confirmed = models.ConfirmedTutor{
			Course:       course,
			Tutor:        tutor,
			LabAssistant: application.LabAssistant,
			ConfirmedAt:  time.Now().UTC(),
		}
		if _, err := tx.NamedExec(`
			INSERT INTO confirmed_tutors (course_code, tutor_email, lab_assistant, confirmed_at)
			VALUES (:course_code, :tutor_email, :lab_assistant, :confirmed_at)
			ON CONFLICT(course_code, tutor_email) DO UPDATE SET
			lab_assistant = :lab_assistant,
			confirmed_at = :confirmed_at
		`, confirmed); err != nil {
			return fmt.Errorf("failed to confirm tutor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &confirmed, nil
}

func (s *BaseStore) ListConfirmedTutors(course string) ([]models.ConfirmedTutor, error) {
	tutors := []models.ConfirmedTutor{}
	err := s.DB.Select(&tutors, s.Converter(`
		SELECT course_code, tutor_email, lab_assistant, confirmed_at
		FROM confirmed_tutors
		WHERE course_code = ?
		ORDER BY confirmed_at, tutor_email
	`), course)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed tutors: %w", err)
	}
	return tutors, nil
}

func (s *BaseStore) requireCourse(q sqlx.Queryer, code string) error {
	var exists int
	err := sqlx.Get(q, &exists, s.Converter(`SELECT 1 FROM courses WHERE code = ?`), code)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", code, terrors.ErrCourseNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up course: %w", err)
	}
	return nil
}

// lockCourse takes the course row lock. Every transaction that writes the
// shortlist or a ranking takes it first, so they run one at a time per course.
func (s *BaseStore) lockCourse(tx *sqlx.Tx, code string) error {
	var exists int
	err := tx.Get(&exists, s.Converter(`SELECT 1 FROM courses WHERE code = ? FOR UPDATE`), code)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", code, terrors.ErrCourseNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock course: %w", err)
	}
	return nil
}

func (s *BaseStore) requireRole(q sqlx.Queryer, email string, role models.Role) error {
	var got models.Role
	err := sqlx.Get(q, &got, s.Converter(`SELECT role FROM users WHERE email = ?`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", email, terrors.ErrUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if got != role {
		if role == models.RoleTutor {
			return fmt.Errorf("%s: %w", email, terrors.ErrNotATutor)
		}
		return fmt.Errorf("%s: %w", email, terrors.ErrNotALecturer)
	}
	return nil
}

func (s *BaseStore) isCourseLecturer(q sqlx.Queryer, course, lecturer string) (bool, error) {
	var exists int
	err := sqlx.Get(q, &exists, s.Converter(`
		SELECT 1 FROM course_lecturers
		WHERE course_code = ? AND lecturer_email = ?
	`), course, lecturer)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check lecturer: %w", err)
	}
	return true, nil
}

func (s *BaseStore) getApplication(q sqlx.Queryer, course, tutor string) (*models.TutorApplication, error) {
	var application models.TutorApplication
	err := sqlx.Get(q, &application, s.Converter(`
		SELECT course_code, tutor_email, lab_assistant, applied_at
		FROM tutor_applications
		WHERE course_code = ? AND tutor_email = ?
	`), course, tutor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &application, nil
}
