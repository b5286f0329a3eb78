package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/teachteam/internal/models"
	"github.com/shrimpsizemoose/teachteam/internal/terrors"
)

// InitializeRanking moves the lecturer's list from Uninitialized to
// Initialized by copying the current shortlist order. Calling it on an
// initialized list changes nothing.
func (s *BaseStore) InitializeRanking(course, lecturer string) (*models.RankingList, error) {
	var list *models.RankingList
	err := s.inTx(func(tx *sqlx.Tx) error {
		if err := s.requireCourseLecturer(tx, course, lecturer); err != nil {
			return err
		}
		if err := s.lockCourse(tx, course); err != nil {
			return err
		}
		if _, err := s.ensureInitialized(tx, course, lecturer); err != nil {
			return err
		}

		var err error
		list, err = s.getRankingList(tx, course, lecturer)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// GetRankingList returns the lecturer's list, Uninitialized if it was never
// touched. The course must exist and the lecturer must lecture it.
func (s *BaseStore) GetRankingList(course, lecturer string) (*models.RankingList, error) {
	if err := s.requireCourseLecturer(s.DB, course, lecturer); err != nil {
		return nil, err
	}
	return s.getRankingList(s.DB, course, lecturer)
}

// ListRankingLists returns every initialized list for the course, ordered by
// lecturer.
func (s *BaseStore) ListRankingLists(course string) ([]models.RankingList, error) {
	type header struct {
		Lecturer      string    `db:"lecturer_email"`
		InitializedAt time.Time `db:"initialized_at"`
	}
	var headers []header
	err := s.DB.Select(&headers, s.Converter(`
		SELECT lecturer_email, initialized_at
		FROM ranking_lists
		WHERE course_code = ?
		ORDER BY lecturer_email
	`), course)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}

	var entries []models.RankingEntry
	err = s.DB.Select(&entries, s.Converter(`
		SELECT course_code, lecturer_email, tutor_email, rank_index
		FROM lecturer_rankings
		WHERE course_code = ?
		ORDER BY lecturer_email, rank_index
	`), course)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranking entries: %w", err)
	}

	byLecturer := make(map[string][]models.RankingEntry, len(headers))
	for _, e := range entries {
		byLecturer[e.Lecturer] = append(byLecturer[e.Lecturer], e)
	}

	lists := make([]models.RankingList, 0, len(headers))
	for _, h := range headers {
		initializedAt := h.InitializedAt
		list := models.RankingList{
			Course:        course,
			Lecturer:      h.Lecturer,
			State:         models.Initialized,
			InitializedAt: &initializedAt,
			Entries:       byLecturer[h.Lecturer],
		}
		if list.Entries == nil {
			list.Entries = []models.RankingEntry{}
		}
		lists = append(lists, list)
	}
	return lists, nil
}

// UpdateRanking reorders one lecturer's list for a course. The list is
// initialized first if needed; tutor must be on the course shortlist. The
// whole operation is one transaction, so any error leaves the list as it was.
func (s *BaseStore) UpdateRanking(course, lecturer, tutor string, reorder ReorderFunc) (*models.RankingList, error) {
	var list *models.RankingList
	err := s.inTx(func(tx *sqlx.Tx) error {
		if err := s.requireCourseLecturer(tx, course, lecturer); err != nil {
			return err
		}
		if err := s.lockCourse(tx, course); err != nil {
			return err
		}
		if err := s.lockShortlisted(tx, course, tutor); err != nil {
			return err
		}
		if _, err := s.ensureInitialized(tx, course, lecturer); err != nil {
			return err
		}

		current, err := s.rankedTutors(tx, course, lecturer)
		if err != nil {
			return err
		}
		next, err := reorder(current)
		if err != nil {
			return err
		}
		if !samePermutation(current, next) {
			return fmt.Errorf("reorder of %s/%s returned a different set of tutors", course, lecturer)
		}
		if !sameOrder(current, next) {
			if err := s.writeRanking(tx, course, lecturer, next); err != nil {
				return err
			}
		}

		list, err = s.getRankingList(tx, course, lecturer)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *BaseStore) requireCourseLecturer(q sqlx.Queryer, course, lecturer string) error {
	if err := s.requireCourse(q, course); err != nil {
		return err
	}
	ok, err := s.isCourseLecturer(q, course, lecturer)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s/%s: %w", course, lecturer, terrors.ErrNotCourseLecturer)
	}
	return nil
}

// ensureInitialized reports whether this call performed the seeding. The
// caller must hold the course lock.
func (s *BaseStore) ensureInitialized(tx *sqlx.Tx, course, lecturer string) (bool, error) {
	res, err := tx.Exec(s.Converter(`
		INSERT INTO ranking_lists (course_code, lecturer_email, initialized_at)
		VALUES (?, ?, ?)
		ON CONFLICT(course_code, lecturer_email) DO NOTHING
	`), course, lecturer, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to initialize ranking: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	shortlist, err := s.listShortlist(tx, course)
	if err != nil {
		return false, err
	}
	if err := s.writeRanking(tx, course, lecturer, models.Tutors(shortlist)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *BaseStore) rankedTutors(tx *sqlx.Tx, course, lecturer string) ([]string, error) {
	tutors := []string{}
	err := tx.Select(&tutors, s.Converter(`
		SELECT tutor_email
		FROM lecturer_rankings
		WHERE course_code = ? AND lecturer_email = ?
		ORDER BY rank_index
	`), course, lecturer)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}
	return tutors, nil
}

// writeRanking replaces the stored list with tutors ranked 0..len-1. Rows are
// rewritten rather than shifted so the unique rank constraint never sees a
// transient duplicate.
func (s *BaseStore) writeRanking(tx *sqlx.Tx, course, lecturer string, tutors []string) error {
	if _, err := tx.Exec(s.Converter(`
		DELETE FROM lecturer_rankings
		WHERE course_code = ? AND lecturer_email = ?
	`), course, lecturer); err != nil {
		return fmt.Errorf("failed to clear ranking: %w", err)
	}

	insert := s.Converter(`
		INSERT INTO lecturer_rankings (course_code, lecturer_email, tutor_email, rank_index)
		VALUES (?, ?, ?, ?)
	`)
	for rank, tutor := range tutors {
		if _, err := tx.Exec(insert, course, lecturer, tutor, rank); err != nil {
			return fmt.Errorf("failed to write rank %d for %s: %w", rank, tutor, err)
		}
	}
	return nil
}

func (s *BaseStore) getRankingList(q sqlx.Queryer, course, lecturer string) (*models.RankingList, error) {
	list := &models.RankingList{
		Course:   course,
		Lecturer: lecturer,
		State:    models.Uninitialized,
		Entries:  []models.RankingEntry{},
	}

	var initializedAt time.Time
	err := sqlx.Get(q, &initializedAt, s.Converter(`
		SELECT initialized_at
		FROM ranking_lists
		WHERE course_code = ? AND lecturer_email = ?
	`), course, lecturer)
	if errors.Is(err, sql.ErrNoRows) {
		return list, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking state: %w", err)
	}
	list.State = models.Initialized
	list.InitializedAt = &initializedAt

	err = sqlx.Select(q, &list.Entries, s.Converter(`
		SELECT course_code, lecturer_email, tutor_email, rank_index
		FROM lecturer_rankings
		WHERE course_code = ? AND lecturer_email = ?
		ORDER BY rank_index
	`), course, lecturer)
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking entries: %w", err)
	}
	return list, nil
}

func samePermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	return sameOrder(x, y)
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
