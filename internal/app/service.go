package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/teachteam/internal/metrics"
	"github.com/shrimpsizemoose/teachteam/internal/models"
	"github.com/shrimpsizemoose/teachteam/internal/ranking"
	"github.com/shrimpsizemoose/teachteam/internal/store"
	"github.com/shrimpsizemoose/teachteam/internal/terrors"
)

type Service struct {
	Config *Config
	Store  store.TeachStore
	Auth   *Auth
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	return New(config, store, auth), nil
}

func New(config *Config, store store.TeachStore, auth *Auth) *Service {
	return &Service{
		Config: config,
		Store:  store,
		Auth:   auth,
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", terrors.ErrInvalidInput, err)
}

func (s *Service) RegisterUser(user models.User) error {
	if err := user.Validate(); err != nil {
		return invalid(err)
	}
	return s.Store.UpsertUser(user)
}

func (s *Service) CreateCourse(course models.Course) error {
	if err := course.Validate(); err != nil {
		return invalid(err)
	}
	return s.Store.CreateCourse(course)
}

func (s *Service) UpdateCourse(course models.Course) error {
	if err := course.Validate(); err != nil {
		return invalid(err)
	}
	return s.Store.UpdateCourse(course)
}

func (s *Service) DeleteCourse(code string) error {
	return s.Store.DeleteCourse(code)
}

func (s *Service) GetCourse(code string) (*models.Course, error) {
	course, err := s.Store.GetCourse(code)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fmt.Errorf("%s: %w", code, terrors.ErrCourseNotFound)
	}
	return course, nil
}

func (s *Service) ListCourses() ([]models.Course, error) {
	return s.Store.ListCourses()
}

func (s *Service) AssignLecturer(course, lecturer string) error {
	return s.Store.AssignLecturer(course, lecturer)
}

func (s *Service) ListCourseLecturers(course string) ([]string, error) {
	if _, err := s.GetCourse(course); err != nil {
		return nil, err
	}
	return s.Store.ListCourseLecturers(course)
}

func (s *Service) Apply(application models.TutorApplication) error {
	if err := application.Validate(); err != nil {
		return invalid(err)
	}
	return s.Store.CreateApplication(application)
}

func (s *Service) ListApplications(course string) ([]models.TutorApplication, error) {
	if _, err := s.GetCourse(course); err != nil {
		return nil, err
	}
	return s.Store.ListApplications(course)
}

func (s *Service) RejectApplication(course, tutor string) error {
	if err := s.Store.RejectApplication(course, tutor); err != nil {
		return err
	}
	logger.Info.Printf("Rejected %s for %s", tutor, course)
	return nil
}

func (s *Service) AcceptApplication(course, tutor string) (*models.ConfirmedTutor, error) {
	confirmed, err := s.Store.AcceptApplication(course, tutor)
	if err != nil {
		return nil, err
	}
	logger.Info.Printf("Accepted %s for %s", tutor, course)
	return confirmed, nil
}

func (s *Service) ListConfirmedTutors(course string) ([]models.ConfirmedTutor, error) {
	if _, err := s.GetCourse(course); err != nil {
		return nil, err
	}
	return s.Store.ListConfirmedTutors(course)
}

func (s *Service) AddToShortlist(course, tutor string) error {
	if err := s.Store.AddToShortlist(course, tutor); err != nil {
		return err
	}
	metrics.ShortlistChangesTotal.WithLabelValues(course, "add").Inc()
	return nil
}

// RemoveFromShortlist also prunes the tutor from every lecturer's ranking.
func (s *Service) RemoveFromShortlist(course, tutor string) error {
	if err := s.Store.RemoveFromShortlist(course, tutor); err != nil {
		return err
	}
	metrics.ShortlistChangesTotal.WithLabelValues(course, "remove").Inc()
	return nil
}

func (s *Service) GetShortlist(course string) ([]models.ShortlistedTutor, error) {
	return s.Store.ListShortlist(course)
}

func (s *Service) AddNote(course, tutor, lecturer, message string) (*models.ShortlistNote, error) {
	note := models.ShortlistNote{
		ID:        uuid.NewString(),
		Course:    course,
		Tutor:     tutor,
		Lecturer:  lecturer,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := note.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.Store.CreateNote(note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *Service) ListNotes(course, tutor string) ([]models.ShortlistNote, error) {
	return s.Store.ListNotes(course, tutor)
}

func (s *Service) GetRanking(course, lecturer string) (*models.RankingList, error) {
	return s.Store.GetRankingList(course, lecturer)
}

func (s *Service) InitializeRanking(course, lecturer string) (*models.RankingList, error) {
	return s.Store.InitializeRanking(course, lecturer)
}

func (s *Service) MoveToPosition(course, lecturer, tutor string, target int) (*models.RankingList, error) {
	return s.MoveTutor(course, lecturer, tutor, ranking.MovePosition, target)
}

func (s *Service) MoveToTop(course, lecturer, tutor string) (*models.RankingList, error) {
	return s.MoveTutor(course, lecturer, tutor, ranking.MoveTop, 0)
}

func (s *Service) MoveToBottom(course, lecturer, tutor string) (*models.RankingList, error) {
	return s.MoveTutor(course, lecturer, tutor, ranking.MoveBottom, 0)
}

func (s *Service) BumpUp(course, lecturer, tutor string) (*models.RankingList, error) {
	return s.MoveTutor(course, lecturer, tutor, ranking.MoveUp, 0)
}

func (s *Service) BumpDown(course, lecturer, tutor string) (*models.RankingList, error) {
	return s.MoveTutor(course, lecturer, tutor, ranking.MoveDown, 0)
}

// MoveTutor applies move to the lecturer's own list. position is only read
// for ranking.MovePosition.
func (s *Service) MoveTutor(course, lecturer, tutor string, move ranking.Move, position int) (*models.RankingList, error) {
	list, err := s.Store.UpdateRanking(course, lecturer, tutor, func(tutors []string) ([]string, error) {
		target, err := ranking.Target(tutors, tutor, move, position)
		if err != nil {
			return nil, err
		}
		return ranking.MoveToPosition(tutors, tutor, target)
	})
	if err != nil {
		metrics.RankingMovesTotal.WithLabelValues(course, string(move), "error").Inc()
		return nil, err
	}
	metrics.RankingMovesTotal.WithLabelValues(course, string(move), "ok").Inc()
	logger.Debug.Printf("%s moved %s (%s) in %s", lecturer, tutor, move, course)
	return list, nil
}

func (s *Service) CourseRankings(course string) ([]models.RankingList, error) {
	if _, err := s.GetCourse(course); err != nil {
		return nil, err
	}
	return s.Store.ListRankingLists(course)
}

// AggregateScores recomputes the popularity chart for a course from scratch
// over the current shortlist and every initialized lecturer ranking.
func (s *Service) AggregateScores(course string, opts ranking.Options) ([]ranking.Score, error) {
	if _, err := s.GetCourse(course); err != nil {
		return nil, err
	}

	shortlist, err := s.Store.ListShortlist(course)
	if err != nil {
		return nil, fmt.Errorf("failed to get shortlist: %w", err)
	}
	if len(shortlist) == 0 {
		return []ranking.Score{}, nil
	}

	lists, err := s.Store.ListRankingLists(course)
	if err != nil {
		return nil, fmt.Errorf("failed to get rankings: %w", err)
	}

	candidates := make([]ranking.Candidate, 0, len(shortlist))
	for _, st := range shortlist {
		name := st.Name
		if name == "" {
			name = st.Tutor
		}
		candidates = append(candidates, ranking.Candidate{Tutor: st.Tutor, Name: name})
	}
	ballots := make([][]string, 0, len(lists))
	for _, l := range lists {
		ballots = append(ballots, l.Tutors())
	}

	scores := ranking.Aggregate(candidates, ballots, opts)
	if len(scores) > 0 && !opts.Reverse {
		metrics.AggregateTopScore.WithLabelValues(course).Set(float64(scores[0].Score))
	}
	return scores, nil
}

func (s *Service) Healthy() error {
	return s.Store.Ping()
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if s.Auth != nil {
		if err := s.Auth.Close(); err != nil {
			errs = append(errs, fmt.Errorf("auth: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
