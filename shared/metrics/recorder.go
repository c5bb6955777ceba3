// Package metrics exposes counters and histograms for the content store and
// the HTTP layer. Components take a Recorder and default to NoopRecorder, so
// tests and the CLI never need a registry.
package metrics

import "time"

// Result labels for write operations.
const (
	ResultSuccess = "success"
	ResultInvalid = "invalid"
	ResultMissing = "not_found"
	ResultError   = "error"
)

// Recorder receives observations from the store and the HTTP server.
type Recorder interface {
	// ObserveScan records one full pass over the content directory.
	ObserveScan(d time.Duration, files int)
	// IncSkipped counts a post file left out of results, by reason.
	IncSkipped(reason string)
	// IncWrite counts a create/update/delete by result.
	IncWrite(op, result string)
	// ObserveRequest records one handled HTTP request.
	ObserveRequest(method, route string, status int, d time.Duration)
}

// NoopRecorder is the default Recorder.
type NoopRecorder struct{}

func (NoopRecorder) ObserveScan(time.Duration, int) {}
func (NoopRecorder) IncSkipped(string) {}
func (NoopRecorder) IncWrite(string, string) {}
func (NoopRecorder) ObserveRequest(string, string, int, time.Duration) {}
