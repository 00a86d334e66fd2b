// Package models contains the wire types and constants of the chat endpoint.
package models

// Endpoint paths
const (
	EndpointChat = "/chat"
)

// Defaults sent with every request unless configured otherwise
const (
	DefaultBaseURL     = "http://localhost:8000"
	DefaultModel       = "gpt-5"
	DefaultTemperature = 0.7

	// MaxTemperature is the upper bound accepted by the backend
	MaxTemperature = 2.0
)

// DefaultHeaders returns the headers sent with every chat request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
}
