package capture

import (
	"bytes"
	"testing"
	"time"
)

func TestPreview_Publish(t *testing.T) {
	p := NewPreview()

	if _, _, ok := p.Latest(); ok {
		t.Fatal("new preview should be empty")
	}

	changed := p.Changed()
	src := []byte{0xff, 0xd8, 0x01, 0xff, 0xd9}
	p.Publish(src)
	src[2] = 0x02

	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("Changed() channel not closed by Publish")
	}

	got, seq, ok := p.Latest()
	if !ok || seq != 1 {
		t.Fatalf("Latest() = seq %d ok %v, want 1 true", seq, ok)
	}
	if !bytes.Equal(got, []byte{0xff, 0xd8, 0x01, 0xff, 0xd9}) {
		t.Errorf("Latest() = %x, want a copy of the published bytes", got)
	}
}

func TestPreview_UpdateEncodesJPEG(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	p := NewPreview()
	frame := SolidFrame(64, 48, 128)
	defer frame.Close()

	if err := p.Update(&frame); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _, ok := p.Latest()
	if !ok || len(got) < 4 || got[0] != 0xff || got[1] != 0xd8 {
		t.Errorf("preview is not a JPEG: % x", got[:min(4, len(got))])
	}

	if err := p.Update(nil); err != ErrEmptyFrame {
		t.Errorf("Update(nil) = %v, want ErrEmptyFrame", err)
	}
}
