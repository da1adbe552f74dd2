// Package events declares the event types published on the bus. Each pair
// brackets one unit of work; the context passed alongside carries the request
// ID that lets subscribers correlate them.
package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when an HTTP request is received.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted after the handler completes.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}
