// Package api provides typed wrappers for the SkyTask backend endpoints.
//
// Each wrapper is a thin translation of one endpoint onto a client.Caller:
// AuthAPI (login, refresh, profile, logout), TasksAPI, NodesAPI and AlertsAPI.
// List endpoints return the raw JSON body so package listing can normalize the
// envelope. Create and update payloads are checked with go-playground/validator
// before submission and fail with *ValidationError without touching the network.
package api
