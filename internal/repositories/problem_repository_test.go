package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Odeddidi/BugHunt/internal/models"
	"github.com/Odeddidi/BugHunt/internal/testhelpers"
)

func seedProblem(t *testing.T, repo *ProblemRepository, title string) *models.Problem {
	t.Helper()
	p := &models.Problem{
		Title:       title,
		Language:    "python",
		Difficulty:  "easy",
		CodeWithBug: "print(2+3)",
		FixedCode:   "print(2+2)",
		Tests: []models.ProblemTest{
			{Input: "", ExpectedOutput: "4"},
		},
	}
	require.NoError(t, repo.CreateProblem(p))
	return p
}

func TestGetProblemPreloadsTestsInOrder(t *testing.T) {
	repo := &ProblemRepository{DB: testhelpers.SetupTestDB(t)}
	p := &models.Problem{
		Title:       "sum",
		Language:    "python",
		Difficulty:  "easy",
		CodeWithBug: "x",
		FixedCode:   "y",
		Tests: []models.ProblemTest{
			{Input: "1 1", ExpectedOutput: "2"},
			{Input: "2 2", ExpectedOutput: "4"},
			{Input: "3 3", ExpectedOutput: "6"},
		},
	}
	require.NoError(t, repo.CreateProblem(p))

	got, err := repo.GetProblem(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Tests, 3)
	assert.Equal(t, "2", got.Tests[0].ExpectedOutput)
	assert.Equal(t, "6", got.Tests[2].ExpectedOutput)

	_, err = repo.GetProblem(9999)
	assert.ErrorIs(t, err, ErrProblemNotFound)
}

func TestUnseenByBothExcludesEitherPlayersHistory(t *testing.T) {
	repo := &ProblemRepository{DB: testhelpers.SetupTestDB(t)}
	p1 := seedProblem(t, repo, "one")
	p2 := seedProblem(t, repo, "two")
	p3 := seedProblem(t, repo, "three")

	require.NoError(t, repo.MarkSeen(1, p1.ID))
	require.NoError(t, repo.MarkSeen(2, p2.ID))

	unseen, err := repo.UnseenByBoth(1, 2)
	require.NoError(t, err)
	require.Len(t, unseen, 1)
	assert.Equal(t, p3.ID, unseen[0].ID)
}

func TestMarkSeenIsIdempotent(t *testing.T) {
	repo := &ProblemRepository{DB: testhelpers.SetupTestDB(t)}
	p := seedProblem(t, repo, "one")

	require.NoError(t, repo.MarkSeen(1, p.ID))
	require.NoError(t, repo.MarkSeen(1, p.ID))

	seen, err := repo.SeenByUser(1)
	require.NoError(t, err)
	assert.Len(t, seen, 1)
}

func TestSeenByUserListsOnlyOwnHistory(t *testing.T) {
	repo := &ProblemRepository{DB: testhelpers.SetupTestDB(t)}
	p1 := seedProblem(t, repo, "one")
	p2 := seedProblem(t, repo, "two")

	require.NoError(t, repo.MarkSeen(1, p1.ID))
	require.NoError(t, repo.MarkSeen(2, p2.ID))

	seen, err := repo.SeenByUser(1)
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, p1.ID, seen[0].ID)
}
