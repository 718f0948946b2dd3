package health

import "context"

// Checker probes one backing dependency, such as the application database.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// ReadinessUseCase answers whether the server can accept traffic.
type ReadinessUseCase interface {
	Ready(ctx context.Context) error
}

type service struct {
	checkers []Checker
}

// NewService builds the readiness probe behind GET /ready. The first
// failing checker fails the whole probe.
func NewService(checkers ...Checker) ReadinessUseCase {
	return &service{checkers: checkers}
}

func (s *service) Ready(ctx context.Context) error {
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			return err
		}
	}
	return nil
}
