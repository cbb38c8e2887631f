package health

import (
	"context"
	"strings"
	"time"
)

// CheckType represents the type of health check
type CheckType string

const (
	CheckTypeHTTP CheckType = "http"
	CheckTypeTCP  CheckType = "tcp"
)

// Result represents the outcome of a health check
type Result struct {
	Healthy   bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Checker is the interface that all health checkers must implement
type Checker interface {
	// Check performs the health check and returns the result
	Check(ctx context.Context) Result

	// Type returns the type of health check
	Type() CheckType
}

// Config controls how Probe retries failed checks
type Config struct {
	// Interval is the time between attempts of a failing check
	Interval time.Duration

	// Retries is the number of consecutive failures before marking as unhealthy
	Retries int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Interval: time.Second,
		Retries:  1,
	}
}

// Status tracks consecutive results of one checker
type Status struct {
	ConsecutiveFailures  int
	ConsecutiveSuccesses int
	LastCheck            time.Time
	LastResult           Result
	Healthy              bool
}

// NewStatus creates a new Status with default values
func NewStatus() *Status {
	return &Status{
		Healthy: true, // Assume healthy until proven otherwise
	}
}

// Update updates the status based on a new health check result
func (s *Status) Update(result Result, config Config) {
	s.LastCheck = result.CheckedAt
	s.LastResult = result

	if result.Healthy {
		s.ConsecutiveSuccesses++
		s.ConsecutiveFailures = 0
		s.Healthy = true
	} else {
		s.ConsecutiveFailures++
		s.ConsecutiveSuccesses = 0

		// Mark as unhealthy after reaching retry threshold
		if s.ConsecutiveFailures >= config.Retries {
			s.Healthy = false
		}
	}
}

// Probe runs checkers in order and returns the result of the first one that
// turns unhealthy, or a healthy result joining every message
func Probe(ctx context.Context, config Config, checkers ...Checker) Result {
	start := time.Now()
	messages := make([]string, 0, len(checkers))

	for _, checker := range checkers {
		status := NewStatus()
		for {
			status.Update(checker.Check(ctx), config)
			if status.LastResult.Healthy || !status.Healthy {
				break
			}

			select {
			case <-ctx.Done():
				status.Update(Result{Message: ctx.Err().Error(), CheckedAt: time.Now()}, Config{Retries: 1})
			case <-time.After(config.Interval):
			}
			if !status.Healthy {
				break
			}
		}

		if !status.Healthy {
			return status.LastResult
		}
		messages = append(messages, status.LastResult.Message)
	}

	return Result{
		Healthy:   true,
		Message:   strings.Join(messages, "; "),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}
