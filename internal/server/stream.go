package server

import (
	"fmt"
	"net/http"

	"github.com/ayusman/neoncake/internal/capture"
)

// StreamHandler serves the camera preview as MJPEG.
type StreamHandler struct {
	preview *capture.Preview
}

// NewStreamHandler creates a StreamHandler for preview.
func NewStreamHandler(preview *capture.Preview) *StreamHandler {
	return &StreamHandler{preview: preview}
}

// ServeHTTP writes each new preview frame as one multipart part until the
// client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var sent uint64
	for {
		changed := h.preview.Changed()
		if jpeg, seq, ok := h.preview.Latest(); ok && seq != sent {
			if err := writePart(w, jpeg); err != nil {
				return
			}
			sent = seq
		}

		select {
		case <-r.Context().Done():
			return
		case <-changed:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n"); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
