package potential

import (
	"context"
	"time"
)

// EmitFunc receives each solution as soon as its round completes. Returning
// an error stops the search.
type EmitFunc func(Solution) error

// Summary describes a finished (or stopped) session.
type Summary struct {
	Status    Status        `json:"status"`
	Solutions []Solution    `json:"solutions"`
	Rounds    int           `json:"rounds"`
	Bound     float64       `json:"bound"`
	Elapsed   time.Duration `json:"elapsedNs"`
}

// Best returns the cheapest solution, which is always the last one.
func (s Summary) Best() (Solution, bool) {
	if len(s.Solutions) == 0 {
		return Solution{}, false
	}
	return s.Solutions[len(s.Solutions)-1], true
}

// Err returns ErrNoPath when the search finished without a solution.
func (s Summary) Err() error {
	if s.Status == NoPath {
		return ErrNoPath
	}
	return nil
}

// Run drives the session round by round until it is done, handing each
// solution to emit before starting the next round. ctx is checked between
// rounds; a cancelled context stops the search with ctx.Err() and the
// summary so far. A nil emit is allowed.
func Run(ctx context.Context, s *Session, emit EmitFunc) (Summary, error) {
	began := time.Now()
	var sum Summary

	done := func() Summary {
		sum.Rounds = s.Rounds()
		sum.Bound = s.Bound()
		sum.Elapsed = time.Since(began)
		return sum
	}

	for {
		if err := ctx.Err(); err != nil {
			return done(), err
		}

		r := s.RunRound()
		sum.Status = r.Status
		if r.Status != Improved {
			return done(), nil
		}

		sum.Solutions = append(sum.Solutions, *r.Solution)
		if emit != nil {
			if err := emit(*r.Solution); err != nil {
				return done(), err
			}
		}

		if s.Done() {
			// The open set emptied during pruning: the last solution is final.
			sum.Status = Converged
			return done(), nil
		}
	}
}
