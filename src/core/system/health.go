package system

import (
	"context"
	"sync"
	"time"
)

type ComponentStatus string

const (
	StatusUp   ComponentStatus = "up"
	StatusDown ComponentStatus = "down"

	defaultCheckTimeout = 5 * time.Second
)

type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
	Errors     map[string]string          `json:"errors,omitempty"`
}

// Checker probes one dependency.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a function into a Checker.
type CheckFunc struct {
	Component string
	Fn        func(ctx context.Context) error
}

func (c CheckFunc) Name() string                    { return c.Component }
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

type Service struct {
	checkers []Checker
	timeout  time.Duration
}

func NewService(checkers ...Checker) *Service {
	return &Service{
		checkers: checkers,
		timeout:  defaultCheckTimeout,
	}
}

// CheckHealth probes every component in parallel. The overall status is
// "healthy" only when all of them are up.
func (s *Service) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     "healthy",
		Components: make(map[string]ComponentStatus, len(s.checkers)),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, c := range s.checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			err := c.Check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				status.Components[c.Name()] = StatusDown
				if status.Errors == nil {
					status.Errors = make(map[string]string)
				}
				status.Errors[c.Name()] = err.Error()
				status.Status = "unhealthy"
				return
			}
			status.Components[c.Name()] = StatusUp
		}(c)
	}
	wg.Wait()

	return status
}
