package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetHealth() {
	healthChecker = newHealthChecker()
}

func TestUpdateComponent(t *testing.T) {
	resetHealth()

	UpdateComponent(ComponentStore, true, "")
	UpdateComponent(ComponentStore, false, "locked")

	comp := healthChecker.components[ComponentStore]
	assert.False(t, comp.Healthy)
	assert.Equal(t, "locked", comp.Message)
	assert.Len(t, healthChecker.components, 1)
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name       string
		setup      func()
		status     string
		components map[string]string
	}{
		{
			name: "all healthy",
			setup: func() {
				UpdateComponent(ComponentStore, true, "/tmp/skyconsole.db")
				UpdateComponent(ComponentGateway, true, "")
			},
			status: "healthy",
			components: map[string]string{
				ComponentStore:   "healthy: /tmp/skyconsole.db",
				ComponentGateway: "healthy",
			},
		},
		{
			name: "one unhealthy",
			setup: func() {
				UpdateComponent(ComponentStore, true, "")
				UpdateComponent(ComponentGateway, false, "connection refused")
			},
			status: "unhealthy",
			components: map[string]string{
				ComponentStore:   "healthy",
				ComponentGateway: "unhealthy: connection refused",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth()
			SetVersion("1.0.0")
			tt.setup()

			health := GetHealth()
			assert.Equal(t, tt.status, health.Status)
			assert.Equal(t, tt.components, health.Components)
			assert.Equal(t, "1.0.0", health.Version)
		})
	}
}

func TestGetReadiness(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		status  string
		message string
	}{
		{
			name: "ready",
			setup: func() {
				UpdateComponent(ComponentStore, true, "")
				UpdateComponent(ComponentGateway, true, "")
				UpdateComponent(ComponentSession, false, "anonymous")
			},
			status: "ready",
		},
		{
			name: "gateway not checked",
			setup: func() {
				UpdateComponent(ComponentStore, true, "")
			},
			status:  "not_ready",
			message: "waiting for gateway",
		},
		{
			name: "both unhealthy",
			setup: func() {
				UpdateComponent(ComponentStore, false, "locked")
				UpdateComponent(ComponentGateway, false, "timeout")
			},
			status:  "not_ready",
			message: "waiting for gateway, store",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth()
			tt.setup()

			readiness := GetReadiness()
			assert.Equal(t, tt.status, readiness.Status)
			assert.Equal(t, tt.message, readiness.Message)
		})
	}
}
