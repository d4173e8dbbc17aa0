package llm

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// sseFrame is one Server-Sent Event as read off the wire. A frame with Err
// set is the last one on the channel and reports why reading stopped.
type sseFrame struct {
	Event string
	Data  string
	Err   error
}

// readFrames parses Server-Sent Events from body and delivers them on the
// returned channel. The channel is closed when the body is exhausted or ctx
// is cancelled. A read error is delivered as a final frame carrying Err, and
// any partly read frame before it is dropped. The body is closed when reading finishes.
//
// SSE format rules applied:
//   - "event:" sets the event name for the current frame.
//   - "data:" lines carry the payload; several are joined with newlines.
//   - Lines starting with ":" are comments and are ignored.
//   - An empty line ends the frame.
func readFrames(ctx context.Context, body io.ReadCloser) <-chan sseFrame {
	ch := make(chan sseFrame)
	go func() {
		defer close(ch)
		defer body.Close()

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var frame sseFrame
		var data strings.Builder
		hasData := false

		send := func() bool {
			if !hasData && frame.Event == "" {
				return true
			}
			frame.Data = data.String()
			select {
			case ch <- frame:
			case <-ctx.Done():
				return false
			}
			frame = sseFrame{}
			data.Reset()
			hasData = false
			return true
		}

		for scanner.Scan() {
			line := scanner.Text()

			switch {
			case line == "":
				if !send() {
					return
				}

			case strings.HasPrefix(line, ":"):
				// Comment line.

			case strings.HasPrefix(line, "event:"):
				frame.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))

			case strings.HasPrefix(line, "data:"):
				payload := strings.TrimPrefix(line, "data:")
				payload = strings.TrimPrefix(payload, " ")
				if hasData {
					data.WriteByte('\n')
				}
				data.WriteString(payload)
				hasData = true

			default:
				// Unknown field; ignored.
			}
		}

		if err := scanner.Err(); err != nil {
			select {
			case ch <- sseFrame{Err: err}:
			case <-ctx.Done():
			}
			return
		}
		send()
	}()
	return ch
}
