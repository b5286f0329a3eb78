package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/teachteam/internal/models"
)

type TeachStore interface {
	Close() error
	Ping() error
	ApplyMigrations(dir string) error

	UpsertUser(user models.User) error
	GetUser(email string) (*models.User, error)

	CreateCourse(course models.Course) error
	UpdateCourse(course models.Course) error
	DeleteCourse(code string) error
	GetCourse(code string) (*models.Course, error)
	ListCourses() ([]models.Course, error)

	AssignLecturer(course, lecturer string) error
	IsCourseLecturer(course, lecturer string) (bool, error)
	ListCourseLecturers(course string) ([]string, error)

	CreateApplication(application models.TutorApplication) error
	GetApplication(course, tutor string) (*models.TutorApplication, error)
	ListApplications(course string) ([]models.TutorApplication, error)
	RejectApplication(course, tutor string) error
	AcceptApplication(course, tutor string) (*models.ConfirmedTutor, error)
	ListConfirmedTutors(course string) ([]models.ConfirmedTutor, error)

	AddToShortlist(course, tutor string) error
	RemoveFromShortlist(course, tutor string) error
	ListShortlist(course string) ([]models.ShortlistedTutor, error)

	CreateNote(note models.ShortlistNote) error
	ListNotes(course, tutor string) ([]models.ShortlistNote, error)

	InitializeRanking(course, lecturer string) (*models.RankingList, error)
	GetRankingList(course, lecturer string) (*models.RankingList, error)
	ListRankingLists(course string) ([]models.RankingList, error)
	UpdateRanking(course, lecturer, tutor string, reorder ReorderFunc) (*models.RankingList, error)
}

// ReorderFunc receives a lecturer's current ranking, most preferred first, and
// returns the new order. It must return a permutation of its input.
type ReorderFunc func(tutors []string) ([]string, error)

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *BaseStore) Ping() error {
	return s.DB.Ping()
}

// ApplyMigrations applies SQL migrations from a directory in name order,
// translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		logger.Debug.Printf("Applying migration: %s", file.Name())
		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

// inTx runs fn in a transaction, rolling back on any error.
func (s *BaseStore) inTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error.Printf("Rollback failed: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
