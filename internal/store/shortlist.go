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

// AddToShortlist puts tutor at the end of the course shortlist and at the end
// of every lecturer ranking that is already initialized for the course.
func (s *BaseStore) AddToShortlist(course, tutor string) error {
	return s.inTx(func(tx *sqlx.Tx) error {
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

		var seq int
		if err := tx.Get(&seq, s.Converter(`
			SELECT COALESCE(MAX(seq), -1) + 1
			FROM shortlisted_tutors
			WHERE course_code = ?
		`), course); err != nil {
			return fmt.Errorf("failed to compute shortlist position: %w", err)
		}

		res, err := tx.Exec(s.Converter(`
			INSERT INTO shortlisted_tutors (course_code, tutor_email, seq, shortlisted_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(course_code, tutor_email) DO NOTHING
		`), course, tutor, seq, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to shortlist tutor: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%s/%s: %w", course, tutor, terrors.ErrAlreadyShortlisted)
		}

		if _, err := tx.Exec(s.Converter(`
			INSERT INTO lecturer_rankings (course_code, lecturer_email, tutor_email, rank_index)
			SELECT
				rl.course_code,
				rl.lecturer_email,
				CAST(? AS TEXT),
				(
					SELECT COUNT(*)
					FROM lecturer_rankings lr
					WHERE lr.course_code = rl.course_code
					AND lr.lecturer_email = rl.lecturer_email
				)
			FROM ranking_lists rl
			WHERE rl.course_code = ?
		`), tutor, course); err != nil {
			return fmt.Errorf("failed to append tutor to rankings: %w", err)
		}
		return nil
	})
}

func (s *BaseStore) RemoveFromShortlist(course, tutor string) error {
	return s.inTx(func(tx *sqlx.Tx) error {
		return s.removeShortlisted(tx, course, tutor, false)
	})
}

func (s *BaseStore) ListShortlist(course string) ([]models.ShortlistedTutor, error) {
	return s.listShortlist(s.DB, course)
}

func (s *BaseStore) CreateNote(note models.ShortlistNote) error {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	return s.inTx(func(tx *sqlx.Tx) error {
		if err := s.lockShortlisted(tx, note.Course, note.Tutor); err != nil {
			return err
		}
		ok, err := s.isCourseLecturer(tx, note.Course, note.Lecturer)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s/%s: %w", note.Course, note.Lecturer, terrors.ErrNotCourseLecturer)
		}

		if _, err := tx.NamedExec(`
			INSERT INTO shortlist_notes (id, course_code, tutor_email, lecturer_email, message, created_at)
			VALUES (:id, :course_code, :tutor_email, :lecturer_email, :message, :created_at)
		`, note); err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}
		return nil
	})
}

func (s *BaseStore) ListNotes(course, tutor string) ([]models.ShortlistNote, error) {
	notes := []models.ShortlistNote{}
	err := s.DB.Select(&notes, s.Converter(`
		SELECT id, course_code, tutor_email, lecturer_email, message, created_at
		FROM shortlist_notes
		WHERE course_code = ? AND tutor_email = ?
		ORDER BY created_at, id
	`), course, tutor)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (s *BaseStore) listShortlist(q sqlx.Queryer, course string) ([]models.ShortlistedTutor, error) {
	shortlist := []models.ShortlistedTutor{}
	err := sqlx.Select(q, &shortlist, s.Converter(`
		SELECT
			st.course_code,
			st.tutor_email,
			COALESCE(u.name, '') AS name,
			st.seq,
			st.shortlisted_at
		FROM shortlisted_tutors st
		LEFT JOIN users u ON u.email = st.tutor_email
		WHERE st.course_code = ?
		ORDER BY st.seq
	`), course)
	if err != nil {
		return nil, fmt.Errorf("failed to list shortlist: %w", err)
	}
	return shortlist, nil
}

// lockShortlisted holds the shortlist row for the rest of the transaction so a
// concurrent removal and a reorder of the same tutor serialise.
func (s *BaseStore) lockShortlisted(tx *sqlx.Tx, course, tutor string) error {
	var seq int
	err := tx.Get(&seq, s.Converter(`
		SELECT seq
		FROM shortlisted_tutors
		WHERE course_code = ? AND tutor_email = ?
		FOR UPDATE
	`), course, tutor)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s/%s: %w", course, tutor, terrors.ErrNotShortlisted)
	}
	if err != nil {
		return fmt.Errorf("failed to lock shortlist entry: %w", err)
	}
	return nil
}

// removeShortlisted deletes the shortlist entry, its notes, and prunes the
// tutor from every lecturer ranking of the course, keeping ranks dense.
func (s *BaseStore) removeShortlisted(tx *sqlx.Tx, course, tutor string, ignoreMissing bool) error {
	if err := s.lockCourse(tx, course); err != nil {
		return err
	}
	if err := s.lockShortlisted(tx, course, tutor); err != nil {
		if ignoreMissing && errors.Is(err, terrors.ErrNotShortlisted) {
			return nil
		}
		return err
	}

	var lecturers []string
	if err := tx.Select(&lecturers, s.Converter(`
		SELECT lecturer_email
		FROM lecturer_rankings
		WHERE course_code = ? AND tutor_email = ?
	`), course, tutor); err != nil {
		return fmt.Errorf("failed to find affected rankings: %w", err)
	}

	for _, stmt := range []string{
		`DELETE FROM lecturer_rankings WHERE course_code = ? AND tutor_email = ?`,
		`DELETE FROM shortlist_notes WHERE course_code = ? AND tutor_email = ?`,
		`DELETE FROM shortlisted_tutors WHERE course_code = ? AND tutor_email = ?`,
	} {
		if _, err := tx.Exec(s.Converter(stmt), course, tutor); err != nil {
			return fmt.Errorf("failed to remove shortlisted tutor: %w", err)
		}
	}

	for _, lecturer := range lecturers {
		tutors, err := s.rankedTutors(tx, course, lecturer)
		if err != nil {
			return err
		}
		if err := s.writeRanking(tx, course, lecturer, tutors); err != nil {
			return err
		}
	}
	return nil
}
