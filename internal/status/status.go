// Package status runs the dependency checks behind the system status
// endpoint.
package status

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Level is the health of one check or of the system as a whole.
type Level string

const (
	Healthy   Level = "healthy"
	Degraded  Level = "degraded"
	Unhealthy Level = "unhealthy"
)

// Check is the outcome of one dependency check.
type Check struct {
	Name    string `json:"name"`
	Status  Level  `json:"status"`
	Message string `json:"message"`
}

// Report is the overall status: the worst level among its checks.
type Report struct {
	Status Level   `json:"status"`
	Checks []Check `json:"checks"`
}

// Checker performs one named check.
type Checker func(ctx context.Context) Check

// Run executes checkers in order and aggregates their results.
func Run(ctx context.Context, checkers ...Checker) Report {
	r := Report{Status: Healthy, Checks: make([]Check, 0, len(checkers))}
	for _, c := range checkers {
		check := c(ctx)
		r.Checks = append(r.Checks, check)
		r.Status = worst(r.Status, check.Status)
	}
	return r
}

func worst(a, b Level) Level {
	rank := map[Level]int{Healthy: 0, Degraded: 1, Unhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// Pinger is satisfied by stores that can verify their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store reports whether the store answers a ping.
func Store(p Pinger) Checker {
	return func(ctx context.Context) Check {
		if err := p.Ping(ctx); err != nil {
			return Check{Name: "database", Status: Unhealthy, Message: fmt.Sprintf("database error: %v", err)}
		}
		return Check{Name: "database", Status: Healthy, Message: "connection OK"}
	}
}

// APIKey reports whether a generation API key is configured. The key is
// never called or echoed.
func APIKey(provider, key string) Checker {
	return func(context.Context) Check {
		name := provider + "_api_key"
		if key == "" {
			return Check{Name: name, Status: Unhealthy, Message: "API key is not set"}
		}
		return Check{Name: name, Status: Healthy, Message: "API key is configured"}
	}
}

// DataDir reports whether the directory holding dbPath exists and is
// writable. An empty path means an in-memory store and is healthy.
func DataDir(dbPath string) Checker {
	return func(context.Context) Check {
		const name = "data_dir"
		if dbPath == "" {
			return Check{Name: name, Status: Healthy, Message: "in-memory store"}
		}

		dir := filepath.Dir(dbPath)
		info, err := os.Stat(dir)
		if err != nil {
			return Check{Name: name, Status: Unhealthy, Message: fmt.Sprintf("data directory: %v", err)}
		}
		if !info.IsDir() {
			return Check{Name: name, Status: Unhealthy, Message: dir + " is not a directory"}
		}

		probe, err := os.CreateTemp(dir, ".critics-probe-*")
		if err != nil {
			return Check{Name: name, Status: Degraded, Message: fmt.Sprintf("data directory is read-only: %v", err)}
		}
		probe.Close()
		os.Remove(probe.Name())
		return Check{Name: name, Status: Healthy, Message: dir + " is writable"}
	}
}
