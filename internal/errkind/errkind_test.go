package errkind

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"eof", io.EOF, UnexpectedEOF},
		{"wrapped-eof", fmt.Errorf("read: %w", io.EOF), UnexpectedEOF},
		{"plain", errors.New("boom"), Other},
		{"nil", nil, Other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestErrorRoundTrip(t *testing.T) {
	e := New(InvalidData, "bad frame")
	if e.Error() != "invalid-data: bad frame" {
		t.Fatalf("unexpected Error(): %q", e.Error())
	}
	if !e.Fatal() {
		t.Fatalf("InvalidData should be fatal")
	}
}

func TestFatalClassification(t *testing.T) {
	if New(WouldBlock, "").Fatal() {
		t.Fatalf("WouldBlock must not be fatal")
	}
	if !New(Other, "decrypt failed").Fatal() {
		t.Fatalf("Other must be fatal by default")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(Other, nil) != nil {
		t.Fatalf("Wrap(nil) must return nil")
	}
}

func TestFromPreservesKind(t *testing.T) {
	orig := New(OutOfMemory, "frame too large")
	got := From(orig)
	if got.Kind != OutOfMemory {
		t.Fatalf("From did not preserve kind: %v", got.Kind)
	}
}
