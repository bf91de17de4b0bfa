package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ayusman/neoncake/internal/cloud"
	"github.com/ayusman/neoncake/internal/render"
)

func hubCloud() *cloud.PointCloud {
	b := cloud.NewBuilder(2)
	b.Add(mgl64.Vec3{1, 0, 0}, colorful.Color{R: 1, G: 0, B: 1})
	b.Add(mgl64.Vec3{0, 1, 0}, colorful.Color{R: 0, G: 1, B: 1})
	return b.Build()
}

func dialHub(t *testing.T, hub *FrameHub) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(New(Config{Hub: hub}))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/frames"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("invalid message %s: %v", data, err)
	}
}

func TestFrameHub_StreamsFrames(t *testing.T) {
	hub := NewFrameHub(1)
	conn := dialHub(t, hub)

	driver := render.NewDriver(hubCloud(), hub)
	if _, err := driver.Tick(time.UnixMilli(1000), 0.5, mgl64.Vec3{0.1, 0.2, 0.3}, true); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	var hello HelloMessage
	readJSON(t, conn, &hello)
	if hello.Type != MessageHello || hello.Count != 2 {
		t.Errorf("hello = %+v, want 2 points", hello)
	}
	if _, err := uuid.Parse(hello.ID); err != nil {
		t.Errorf("hello id %q is not a uuid: %v", hello.ID, err)
	}
	wantColors := []float32{1, 0, 1, 0, 1, 1}
	for i, c := range wantColors {
		if hello.Colors[i] != c {
			t.Fatalf("colors = %v, want %v", hello.Colors, wantColors)
		}
	}

	var frame FrameMessage
	readJSON(t, conn, &frame)
	if frame.Type != MessageFrame || frame.Number != 1 || frame.Timestamp != 1000 {
		t.Errorf("frame header = %+v", frame)
	}
	if frame.Openness != 0.5 || !frame.Tracking || frame.Rotation != [3]float64{0.1, 0.2, 0.3} {
		t.Errorf("frame state = openness %f tracking %v rotation %v", frame.Openness, frame.Tracking, frame.Rotation)
	}
	if len(frame.Positions) != 6 || frame.Positions[0] != 2.5 || frame.Positions[4] != 2.5 {
		t.Errorf("positions = %v, want points pushed out to 2.5", frame.Positions)
	}
	if len(frame.Lights) != 3 || frame.FOV != 75 {
		t.Errorf("lights = %d fov = %f", len(frame.Lights), frame.FOV)
	}
}

func TestFrameHub_EveryNthFrame(t *testing.T) {
	hub := NewFrameHub(3)
	conn := dialHub(t, hub)

	driver := render.NewDriver(hubCloud(), hub)
	for i := 0; i < 6; i++ {
		driver.Tick(time.Now(), 0, mgl64.Vec3{}, false)
	}

	var hello HelloMessage
	readJSON(t, conn, &hello)

	var numbers []uint64
	for i := 0; i < 2; i++ {
		var frame FrameMessage
		readJSON(t, conn, &frame)
		numbers = append(numbers, frame.Number)
	}
	if numbers[0] != 3 || numbers[1] != 6 {
		t.Errorf("frame numbers = %v, want [3 6]", numbers)
	}
}

func TestFrameHub_DrawWithoutViewers(t *testing.T) {
	hub := NewFrameHub(1)
	driver := render.NewDriver(hubCloud(), hub)

	if _, err := driver.Tick(time.Now(), 0, mgl64.Vec3{}, false); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if hub.Clients() != 0 {
		t.Errorf("Clients() = %d, want 0", hub.Clients())
	}
}

func TestFrameHub_DisconnectAndClose(t *testing.T) {
	hub := NewFrameHub(1)
	conn := dialHub(t, hub)

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer was not removed after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn2 := dialHub(t, hub)
	if err := hub.Close(); err != nil {
		t.Fatal(err)
	}
	if hub.Clients() != 0 {
		t.Errorf("Clients() = %d after Close, want 0", hub.Clients())
	}

	conn2.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn2.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed by the hub")
	}
}
