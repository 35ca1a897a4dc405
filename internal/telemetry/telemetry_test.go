package telemetry

import (
	"errors"
	"testing"
)

func TestFailureReason(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{errors.New("i/o timeout"), "timeout"},
		{errors.New("x509: certificate signed by unknown authority"), "tls"},
		{errors.New("lookup host: no such host"), "dns"},
		{errors.New("connection refused"), "refused"},
		{errors.New("boom"), "other"},
		{nil, "unknown"},
	}

	for _, tc := range cases {
		if got := failureReason(tc.err); got != tc.want {
			t.Fatalf("failureReason(%v)=%q want %q", tc.err, got, tc.want)
		}
	}
}

func TestObserveBeforeEnableIsNoop(t *testing.T) {
	// isEnabled defaults false at package init in an isolated test binary;
	// observers must not panic or register metrics with zero label values.
	ObserveFrame("send", "tcp", 128)
	ObserveHandshake("tcp", 0)
	ObserveHandshakeFailure("tcp", errors.New("refused"))
	SetNonce("send", 1)
}

func TestEnableIsIdempotent(t *testing.T) {
	Enable()
	Enable()
	if !isEnabled() {
		t.Fatal("expected enabled after Enable()")
	}
}
