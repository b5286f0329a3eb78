package postgres

import (
	"context"
	"flag"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shrimpsizemoose/teachteam/internal/models"
	"github.com/shrimpsizemoose/teachteam/internal/ranking"
	"github.com/shrimpsizemoose/teachteam/internal/terrors"
)

const course = "COSC2222"

// setupTestDB starts a throwaway Postgres container and applies migrations
func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	ctx := context.Background()

	postgres, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := postgres.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresStore(dsn, "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		s.Close()
		postgres.Terminate(ctx)
	}

	return s, cleanup
}

func setupTestData(t *testing.T) (*PostgresStore, func()) {
	s, cleanup := setupTestDB(t)

	require.NoError(t, s.CreateCourse(models.Course{Code: course, Title: "Algorithms"}))
	require.NoError(t, s.UpsertUser(models.User{Email: "x@rmit.edu.au", Name: "X", Role: models.RoleLecturer}))
	require.NoError(t, s.AssignLecturer(course, "x@rmit.edu.au"))
	for _, tutor := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.UpsertUser(models.User{Email: tutor, Name: tutor, Role: models.RoleTutor}))
		require.NoError(t, s.CreateApplication(models.TutorApplication{Course: course, Tutor: tutor}))
		require.NoError(t, s.AddToShortlist(course, tutor))
	}

	return s, cleanup
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping Postgres integration tests. Use -short=false to run them.")
		os.Exit(0)
	}
	log.Println("Starting Postgres store tests...")
	code := m.Run()
	log.Println("Finished Postgres store tests")
	os.Exit(code)
}

func TestNumberPlaceholders(t *testing.T) {
	got := numberPlaceholders("SELECT 1 FROM t WHERE a = ? AND b = ?")
	assert.Equal(t, "SELECT 1 FROM t WHERE a = $1 AND b = $2", got)
}

func TestRankingLifecycle(t *testing.T) {
	s, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("move seeds and reorders", func(t *testing.T) {
		list, err := s.UpdateRanking(course, "x@rmit.edu.au", "d", func(tutors []string) ([]string, error) {
			return ranking.MoveToPosition(tutors, "d", 1)
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "d", "b", "c"}, list.Tutors())
	})

	t.Run("removal prunes and compacts", func(t *testing.T) {
		require.NoError(t, s.RemoveFromShortlist(course, "d"))

		list, err := s.GetRankingList(course, "x@rmit.edu.au")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, list.Tutors())
		for i, e := range list.Entries {
			assert.Equal(t, i, e.Rank)
		}
	})

	t.Run("removed tutor cannot be moved", func(t *testing.T) {
		_, err := s.UpdateRanking(course, "x@rmit.edu.au", "d", func(tutors []string) ([]string, error) {
			return ranking.MoveToPosition(tutors, "d", 0)
		})
		assert.ErrorIs(t, err, terrors.ErrNotFound)
	})

	t.Run("re-shortlisted tutor is appended", func(t *testing.T) {
		require.NoError(t, s.AddToShortlist(course, "d"))

		list, err := s.GetRankingList(course, "x@rmit.edu.au")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, list.Tutors())
	})
}

func TestApplicationAcceptance(t *testing.T) {
	s, cleanup := setupTestData(t)
	defer cleanup()

	_, err := s.InitializeRanking(course, "x@rmit.edu.au")
	require.NoError(t, err)

	confirmed, err := s.AcceptApplication(course, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", confirmed.Tutor)

	shortlist, err := s.ListShortlist(course)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d"}, models.Tutors(shortlist))

	list, err := s.GetRankingList(course, "x@rmit.edu.au")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d"}, list.Tutors())
}

func TestConcurrentShortlistAdds(t *testing.T) {
	s, cleanup := setupTestData(t)
	defer cleanup()

	_, err := s.InitializeRanking(course, "x@rmit.edu.au")
	require.NoError(t, err)

	added := []string{"e", "f", "g", "h", "i", "j"}
	for _, tutor := range added {
		require.NoError(t, s.UpsertUser(models.User{Email: tutor, Name: tutor, Role: models.RoleTutor}))
		require.NoError(t, s.CreateApplication(models.TutorApplication{Course: course, Tutor: tutor}))
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2*len(added))
	for _, tutor := range added {
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- s.AddToShortlist(course, tutor)
		}()
		go func() {
			defer wg.Done()
			_, err := s.UpdateRanking(course, "x@rmit.edu.au", "a", func(tutors []string) ([]string, error) {
				return ranking.MoveToPosition(tutors, "a", len(tutors)-1)
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	shortlist, err := s.ListShortlist(course)
	require.NoError(t, err)
	require.Len(t, shortlist, 10)

	list, err := s.GetRankingList(course, "x@rmit.edu.au")
	require.NoError(t, err)
	assert.ElementsMatch(t, models.Tutors(shortlist), list.Tutors())
	for i, e := range list.Entries {
		assert.Equal(t, i, e.Rank)
	}
}
