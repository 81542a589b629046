// Package retry runs actions repeatedly until they succeed or a strategy
// decides no further attempts should be made.
package retry

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retrier retries the provided action.
type Retrier interface {
	Retry(action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier that applies the provided strategies to every
// action it runs. Without strategies the action is retried in a tight loop
// until it succeeds.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

// Retry implements Retrier.Retry
func (r *retrier) Retry(action Action) (uint, error) {
	return Retry(action, r.strategies...)
}

// Retry executes the action until it succeeds or one of the strategies
// declines another attempt. It returns the number of attempts made along with
// the last error observed.
//
// Strategies are evaluated in order and evaluation stops at the first one that
// declines, so strategies that sleep should be listed last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	for attempts := uint(1); ; attempts++ {
		err := action()
		if err == nil {
			return attempts, nil
		}

		for _, s := range strategies {
			if !s(attempts, err) {
				return attempts, err
			}
		}
	}
}
