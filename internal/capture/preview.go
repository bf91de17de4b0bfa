package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// DefaultPreviewQuality is the JPEG quality of preview frames.
const DefaultPreviewQuality = 70

// Preview holds the most recent camera frame as JPEG so viewers can watch the
// feed without taking frames away from the detector.
type Preview struct {
	mu      sync.RWMutex
	quality int
	jpeg    []byte
	seq     uint64
	notify  chan struct{}
}

// NewPreview returns an empty preview.
func NewPreview() *Preview {
	return &Preview{
		quality: DefaultPreviewQuality,
		notify:  make(chan struct{}),
	}
}

// Update encodes frame and publishes it to waiting viewers.
func (p *Preview) Update(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return ErrEmptyFrame
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{gocv.IMWriteJpegQuality, p.quality})
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	p.Publish(buf.GetBytes())
	return nil
}

// Publish stores an already encoded JPEG.
func (p *Preview) Publish(jpeg []byte) {
	data := make([]byte, len(jpeg))
	copy(data, jpeg)

	p.mu.Lock()
	p.jpeg = data
	p.seq++
	close(p.notify)
	p.notify = make(chan struct{})
	p.mu.Unlock()
}

// Latest returns the newest JPEG and its sequence number. ok is false until
// the first frame arrives.
func (p *Preview) Latest() (jpeg []byte, seq uint64, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.seq, p.jpeg != nil
}

// Changed returns a channel closed by the next Publish.
func (p *Preview) Changed() <-chan struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.notify
}
