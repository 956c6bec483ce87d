package handlers

import (
	"context"
)

// --- Health Check ---

// HealthInput is the input for health check endpoints.
type HealthInput struct{}

// HealthOutput is the output for health check endpoints.
type HealthOutput struct {
	Body struct {
		Status string `json:"status" doc:"Service health status"`
	}
}

// HealthCheck returns the service health status.
// This is a public endpoint (no auth required).
func HealthCheck(_ context.Context, _ *HealthInput) (*HealthOutput, error) {
	out := &HealthOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// --- Version ---

// VersionInput is the input for the version endpoint.
type VersionInput struct{}

// VersionOutput is the output for the version endpoint.
type VersionOutput struct {
	Body struct {
		Version string `json:"version" doc:"Daemon version"`
		Commit  string `json:"commit,omitempty" doc:"VCS commit the daemon was built from"`
		Date    string `json:"date,omitempty" doc:"Build date"`
	}
}

// VersionHandler returns a version handler bound to the build info set at
// link time in main.
func VersionHandler(version, commit, date string) func(context.Context, *VersionInput) (*VersionOutput, error) {
	return func(_ context.Context, _ *VersionInput) (*VersionOutput, error) {
		out := &VersionOutput{}
		out.Body.Version = version
		out.Body.Commit = commit
		out.Body.Date = date
		return out, nil
	}
}
