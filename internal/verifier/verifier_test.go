package verifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Odeddidi/BugHunt/internal/models"
)

// scriptedRunner replays canned results keyed by stdin.
type scriptedRunner struct {
	results map[string]runResult
	calls   []string
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

func (r *scriptedRunner) Execute(_ context.Context, _, _, stdin string) (string, string, error) {
	r.calls = append(r.calls, stdin)
	res := r.results[stdin]
	return res.stdout, res.stderr, res.err
}

func twoTestProblem() *models.Problem {
	return &models.Problem{
		ID:       1,
		Language: "python",
		Tests: []models.ProblemTest{
			{Input: "1 2", ExpectedOutput: "3"},
			{Input: "2 2", ExpectedOutput: "4"},
		},
	}
}

func TestVerifyAllTestsPass(t *testing.T) {
	runner := &scriptedRunner{results: map[string]runResult{
		"1 2": {stdout: "3\n"},
		"2 2": {stdout: "4\n"},
	}}
	v := New(runner)

	verdict, err := v.Verify(context.Background(), "code", twoTestProblem())
	require.NoError(t, err)
	assert.True(t, verdict.Correct)
	assert.Equal(t, []string{"1 2", "2 2"}, runner.calls)
}

func TestVerifyStopsAtFirstWrongOutput(t *testing.T) {
	runner := &scriptedRunner{results: map[string]runResult{
		"1 2": {stdout: "99"},
		"2 2": {stdout: "4"},
	}}
	v := New(runner)

	verdict, err := v.Verify(context.Background(), "code", twoTestProblem())
	require.NoError(t, err)
	assert.False(t, verdict.Correct)
	assert.Equal(t, "99", verdict.Stdout)
	assert.Equal(t, "3", verdict.Expected)
	assert.Equal(t, []string{"1 2"}, runner.calls, "must not run later tests")
}

func TestVerifyStderrFailsEvenWithMatchingStdout(t *testing.T) {
	runner := &scriptedRunner{results: map[string]runResult{
		"1 2": {stdout: "3", stderr: "Traceback (most recent call last)"},
	}}
	v := New(runner)

	verdict, err := v.Verify(context.Background(), "code", twoTestProblem())
	require.NoError(t, err)
	assert.False(t, verdict.Correct)
	assert.NotEmpty(t, verdict.Stderr)
}

func TestVerifyWhitespaceIsTrimmed(t *testing.T) {
	runner := &scriptedRunner{results: map[string]runResult{
		"1 2": {stdout: "  3 \n"},
		"2 2": {stdout: "\n4\n"},
	}}
	v := New(runner)

	verdict, err := v.Verify(context.Background(), "code", twoTestProblem())
	require.NoError(t, err)
	assert.True(t, verdict.Correct)
}

func TestVerifyRunnerErrorPropagates(t *testing.T) {
	boom := errors.New("judge down")
	runner := &scriptedRunner{results: map[string]runResult{
		"1 2": {err: boom},
	}}
	v := New(runner)

	verdict, err := v.Verify(context.Background(), "code", twoTestProblem())
	require.ErrorIs(t, err, boom)
	assert.False(t, verdict.Correct)
}

func TestVerifyNoTestsIsVacuouslyCorrect(t *testing.T) {
	v := New(&scriptedRunner{})
	verdict, err := v.Verify(context.Background(), "code", &models.Problem{ID: 2, Language: "python"})
	require.NoError(t, err)
	assert.True(t, verdict.Correct)
}
