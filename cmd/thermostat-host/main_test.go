package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sweeney/thermostat-panel/internal/upload"
)

func TestReadFrames(t *testing.T) {
	port := &upload.FakeHostPort{Replies: [][]string{
		{"{\"temperature\": 21.5000, \"setpoint\": 20}\n"},
		{"{\"temperature\": 21.", "5000"},
		{"{\"temperature\": -0.2500, \"setpoint\": 20}\n"},
	}}

	var out bytes.Buffer
	if err := readFrames(upload.NewClient(port, 2), 2, 0, &out); err != nil {
		t.Fatalf("readFrames: %v", err)
	}

	want := "{\"temperature\":21.5,\"setpoint\":20}\n{\"temperature\":-0.25,\"setpoint\":20}\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if got := port.Written.String(); got != "readreadread" {
		t.Errorf("requests = %q, want three", got)
	}
}

func TestReadFramesStopsOnError(t *testing.T) {
	port := &upload.FakeHostPort{Replies: [][]string{
		{"{\"temperature\": 21.5000, \"setpoint\": 20}\n"},
	}}

	var out bytes.Buffer
	err := readFrames(upload.NewClient(port, 1), 0, 0, &out)
	if !errors.Is(err, upload.ErrNoReply) {
		t.Fatalf("err = %v, want ErrNoReply", err)
	}
	if bytes.Count(out.Bytes(), []byte("\n")) != 1 {
		t.Errorf("expected one frame before the error, got %q", out.String())
	}
}
