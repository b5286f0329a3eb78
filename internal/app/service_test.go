package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/teachteam/internal/models"
	"github.com/shrimpsizemoose/teachteam/internal/ranking"
	"github.com/shrimpsizemoose/teachteam/internal/store/sqlite"
	"github.com/shrimpsizemoose/teachteam/internal/terrors"
)

const (
	testCourse = "COSC2758"
	lecturerX  = "x@rmit.edu.au"
	lecturerY  = "y@rmit.edu.au"
	tutorA     = "a@student.rmit.edu.au"
	tutorB     = "b@student.rmit.edu.au"
	tutorC     = "c@student.rmit.edu.au"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	s, err := sqlite.NewSQLiteStore(":memory:", "../../migrations")
	require.NoError(t, err)

	config := &Config{}
	config.Chart.DefaultLimit = 10
	auth, err := NewAuth(config)
	require.NoError(t, err)

	service := New(config, s, auth)
	t.Cleanup(func() { service.Close() })

	require.NoError(t, service.CreateCourse(models.Course{Code: testCourse, Title: "Full Stack Development"}))
	for _, l := range []string{lecturerX, lecturerY} {
		require.NoError(t, service.RegisterUser(models.User{Email: l, Name: "Lecturer " + l[:1], Role: models.RoleLecturer}))
		require.NoError(t, service.AssignLecturer(testCourse, l))
	}
	for _, tutor := range []string{tutorA, tutorB, tutorC} {
		require.NoError(t, service.RegisterUser(models.User{Email: tutor, Name: "Tutor " + tutor[:1], Role: models.RoleTutor}))
		require.NoError(t, service.Apply(models.TutorApplication{Course: testCourse, Tutor: tutor}))
		require.NoError(t, service.AddToShortlist(testCourse, tutor))
	}

	return service
}

func TestValidationErrors(t *testing.T) {
	service := setupService(t)

	tests := []struct {
		name string
		run  func() error
	}{
		{"bad course code", func() error {
			return service.CreateCourse(models.Course{Code: "cosc1", Title: "Lowercase"})
		}},
		{"missing course title", func() error {
			return service.UpdateCourse(models.Course{Code: testCourse})
		}},
		{"bad user role", func() error {
			return service.RegisterUser(models.User{Email: "z@rmit.edu.au", Name: "Z", Role: "admin"})
		}},
		{"bad tutor email", func() error {
			return service.Apply(models.TutorApplication{Course: testCourse, Tutor: "not-an-email"})
		}},
		{"empty note", func() error {
			_, err := service.AddNote(testCourse, tutorA, lecturerX, "")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), terrors.ErrInvalidInput)
		})
	}
}

func TestGetCourse(t *testing.T) {
	service := setupService(t)

	course, err := service.GetCourse(testCourse)
	require.NoError(t, err)
	assert.Equal(t, "Full Stack Development", course.Title)

	_, err = service.GetCourse("COSC0000")
	assert.ErrorIs(t, err, terrors.ErrNotFound)

	_, err = service.ListApplications("COSC0000")
	assert.ErrorIs(t, err, terrors.ErrCourseNotFound)
}

func TestMoveTutor(t *testing.T) {
	service := setupService(t)

	list, err := service.MoveToBottom(testCourse, lecturerX, tutorA)
	require.NoError(t, err)
	assert.Equal(t, []string{tutorB, tutorC, tutorA}, list.Tutors())
	assert.Equal(t, models.Initialized, list.State)

	list, err = service.BumpUp(testCourse, lecturerX, tutorA)
	require.NoError(t, err)
	assert.Equal(t, []string{tutorB, tutorA, tutorC}, list.Tutors())

	list, err = service.MoveToTop(testCourse, lecturerX, tutorC)
	require.NoError(t, err)
	assert.Equal(t, []string{tutorC, tutorB, tutorA}, list.Tutors())

	list, err = service.BumpDown(testCourse, lecturerX, tutorA)
	require.NoError(t, err, "bumping the last tutor down is a no-op")
	assert.Equal(t, []string{tutorC, tutorB, tutorA}, list.Tutors())

	list, err = service.MoveToPosition(testCourse, lecturerX, tutorA, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{tutorC, tutorA, tutorB}, list.Tutors())

	_, err = service.MoveToPosition(testCourse, lecturerX, tutorA, 3)
	assert.ErrorIs(t, err, terrors.ErrInvalidPosition)

	other, err := service.GetRanking(testCourse, lecturerY)
	require.NoError(t, err)
	assert.Equal(t, models.Uninitialized, other.State, "moves never touch another lecturer's list")
}

func TestMoveFailsWithoutSeedingOnBadPosition(t *testing.T) {
	service := setupService(t)

	_, err := service.MoveToPosition(testCourse, lecturerX, tutorA, -1)
	assert.ErrorIs(t, err, terrors.ErrInvalidPosition)

	list, err := service.GetRanking(testCourse, lecturerX)
	require.NoError(t, err)
	assert.Equal(t, models.Uninitialized, list.State)
	assert.Empty(t, list.Entries)
}

func TestAggregateScores(t *testing.T) {
	service := setupService(t)

	_, err := service.InitializeRanking(testCourse, lecturerX)
	require.NoError(t, err)
	_, err = service.MoveToTop(testCourse, lecturerY, tutorC)
	require.NoError(t, err)

	// x: [a b c], y: [c a b]; contributions are 4, 3, 2
	scores, err := service.AggregateScores(testCourse, ranking.Options{})
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, ranking.Score{Tutor: tutorA, Name: "Tutor a", Score: 7}, scores[0])
	assert.Equal(t, ranking.Score{Tutor: tutorC, Name: "Tutor c", Score: 6}, scores[1])
	assert.Equal(t, ranking.Score{Tutor: tutorB, Name: "Tutor b", Score: 5}, scores[2])

	bottom, err := service.AggregateScores(testCourse, ranking.Options{Reverse: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, bottom, 1)
	assert.Equal(t, tutorB, bottom[0].Tutor)

	t.Run("removed tutor drops out of the chart", func(t *testing.T) {
		require.NoError(t, service.RemoveFromShortlist(testCourse, tutorA))

		scores, err := service.AggregateScores(testCourse, ranking.Options{})
		require.NoError(t, err)
		require.Len(t, scores, 2)
		// x: [b c], y: [c b]; contributions are 3, 2
		assert.Equal(t, 5, scores[0].Score)
		assert.Equal(t, 5, scores[1].Score)
		assert.Equal(t, tutorB, scores[0].Tutor, "ties are broken by email")
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := service.AggregateScores("COSC0000", ranking.Options{})
		assert.ErrorIs(t, err, terrors.ErrNotFound)
	})
}

func TestAggregateScoresEmptyShortlist(t *testing.T) {
	service := setupService(t)
	require.NoError(t, service.CreateCourse(models.Course{Code: "COSC9999", Title: "Empty"}))

	scores, err := service.AggregateScores("COSC9999", ranking.Options{})
	require.NoError(t, err)
	assert.NotNil(t, scores)
	assert.Empty(t, scores)
}

func TestNotes(t *testing.T) {
	service := setupService(t)

	note, err := service.AddNote(testCourse, tutorA, lecturerX, "Great in the interview")
	require.NoError(t, err)
	assert.NotEmpty(t, note.ID)

	notes, err := service.ListNotes(testCourse, tutorA)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Great in the interview", notes[0].Message)
	assert.Equal(t, lecturerX, notes[0].Lecturer)

	_, err = service.AddNote(testCourse, "d@student.rmit.edu.au", lecturerX, "hi")
	assert.ErrorIs(t, err, terrors.ErrNotShortlisted)
}

func TestAcceptApplication(t *testing.T) {
	service := setupService(t)

	_, err := service.InitializeRanking(testCourse, lecturerX)
	require.NoError(t, err)

	confirmed, err := service.AcceptApplication(testCourse, tutorB)
	require.NoError(t, err)
	assert.Equal(t, tutorB, confirmed.Tutor)

	list, err := service.GetRanking(testCourse, lecturerX)
	require.NoError(t, err)
	assert.Equal(t, []string{tutorA, tutorC}, list.Tutors())

	confirmedTutors, err := service.ListConfirmedTutors(testCourse)
	require.NoError(t, err)
	require.Len(t, confirmedTutors, 1)

	err = service.RejectApplication(testCourse, tutorB)
	assert.ErrorIs(t, err, terrors.ErrApplicationNotFound)
}
