package metrics

import (
	"sort"
	"sync"
	"time"
)

// Console components tracked for `skyctl status`
const (
	ComponentStore   = "store"
	ComponentGateway = "gateway"
	ComponentSession = "session"
)

// criticalComponents must be healthy for the console to be ready
var criticalComponents = []string{ComponentStore, ComponentGateway}

// HealthStatus is the aggregated health of the console components
type HealthStatus struct {
	Status     string            `json:"status" yaml:"status"` // "healthy", "unhealthy", "ready", "not_ready"
	Timestamp  time.Time         `json:"timestamp" yaml:"timestamp"`
	Components map[string]string `json:"components,omitempty" yaml:"components,omitempty"`
	Message    string            `json:"message,omitempty" yaml:"message,omitempty"`
	Version    string            `json:"version,omitempty" yaml:"version,omitempty"`
}

var (
	healthChecker = newHealthChecker()
)

// ComponentHealth tracks the health of a single component
type ComponentHealth struct {
	Name    string
	Healthy bool
	Message string
	Updated time.Time
}

// HealthChecker holds the last reported state of each component
type HealthChecker struct {
	mu         sync.RWMutex
	components map[string]ComponentHealth
	version    string
}

func newHealthChecker() *HealthChecker {
	return &HealthChecker{components: make(map[string]ComponentHealth)}
}

// SetVersion sets the version string for health reports
func SetVersion(version string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.version = version
}

// UpdateComponent records the health of a component
func UpdateComponent(name string, healthy bool, message string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()

	healthChecker.components[name] = ComponentHealth{
		Name:    name,
		Healthy: healthy,
		Message: message,
		Updated: time.Now(),
	}
}

// GetHealth returns the health of every reported component
func GetHealth() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	status := "healthy"
	components := make(map[string]string)

	for name, comp := range healthChecker.components {
		components[name] = describe(comp)
		if !comp.Healthy {
			status = "unhealthy"
		}
	}

	return HealthStatus{
		Status:     status,
		Timestamp:  time.Now(),
		Components: components,
		Version:    healthChecker.version,
	}
}

// GetReadiness reports whether the store and the gateway are usable
func GetReadiness() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	status := "ready"
	var waiting []string
	components := make(map[string]string)

	for _, name := range criticalComponents {
		comp, exists := healthChecker.components[name]
		switch {
		case !exists:
			status = "not_ready"
			waiting = append(waiting, name)
			components[name] = "not checked"
		case !comp.Healthy:
			status = "not_ready"
			waiting = append(waiting, name)
			components[name] = describe(comp)
		default:
			components[name] = "ready"
		}
	}

	message := ""
	if len(waiting) > 0 {
		sort.Strings(waiting)
		message = "waiting for " + waiting[0]
		for _, name := range waiting[1:] {
			message += ", " + name
		}
	}

	return HealthStatus{
		Status:     status,
		Timestamp:  time.Now(),
		Components: components,
		Message:    message,
		Version:    healthChecker.version,
	}
}

func describe(comp ComponentHealth) string {
	state := "healthy"
	if !comp.Healthy {
		state = "unhealthy"
	}
	if comp.Message == "" {
		return state
	}
	return state + ": " + comp.Message
}
