package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dusk-indust/critics/internal/review"
)

// reviewStream writes a review's events as Server-Sent Events. Each frame
// names the event type so EventSource clients can subscribe per type:
//
//	event: comment
//	data: {"type":"comment","comment":{...}}
type reviewStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newReviewStream sets the stream headers and commits the 200 status.
// Without http.Flusher support frames may be buffered.
func newReviewStream(w http.ResponseWriter) *reviewStream {
	f, _ := w.(http.Flusher)
	rs := &reviewStream{w: w, flusher: f}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	rs.flush()
	return rs
}

// send writes one frame. An error means the client is gone.
func (rs *reviewStream) send(ev review.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("sse: encode %s event: %w", ev.Type, err)
	}
	if _, err := fmt.Fprintf(rs.w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		return fmt.Errorf("sse: write %s event: %w", ev.Type, err)
	}
	rs.flush()
	return nil
}

func (rs *reviewStream) flush() {
	if rs.flusher != nil {
		rs.flusher.Flush()
	}
}
