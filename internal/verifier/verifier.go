package verifier

import (
	"context"
	"strings"

	"github.com/Odeddidi/BugHunt/internal/judge"
	"github.com/Odeddidi/BugHunt/internal/models"
)

// Verdict is the outcome of running a submission against a problem's tests,
// with diagnostics from the last test that ran.
type Verdict struct {
	Correct  bool
	Stdout   string
	Expected string
	Stderr   string
}

// Verifier runs a submission against every test case of a problem
// sequentially, stopping at the first failing or erroring test.
type Verifier struct {
	runner judge.Runner
}

func New(runner judge.Runner) *Verifier {
	return &Verifier{runner: runner}
}

// Verify returns the verdict for code against problem.Tests. A judge
// transport error is returned alongside an incorrect verdict; it is never a
// reason to abandon the session.
func (v *Verifier) Verify(ctx context.Context, code string, problem *models.Problem) (Verdict, error) {
	verdict := Verdict{}

	for _, test := range problem.Tests {
		expected := strings.TrimSpace(test.ExpectedOutput)

		stdout, stderr, err := v.runner.Execute(ctx, problem.Language, code, test.Input)
		if err != nil {
			return verdict, err
		}

		verdict.Stdout = strings.TrimSpace(stdout)
		verdict.Expected = expected
		verdict.Stderr = strings.TrimSpace(stderr)

		if verdict.Stderr != "" {
			return verdict, nil
		}
		if verdict.Stdout != expected {
			return verdict, nil
		}
	}

	verdict.Correct = true
	return verdict, nil
}
