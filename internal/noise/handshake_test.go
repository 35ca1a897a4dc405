package noise

import (
	"context"
	"net"
	"sync"
	"testing"

	"canary/internal/wire"
)

func TestRunHandshakeElectsOppositeRoles(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	var wg sync.WaitGroup
	wg.Add(2)

	var resA, resB *Result
	var errA, errB error

	go func() {
		defer wg.Done()
		resA, errA = Run(context.Background(), wire.RawDuplex(a))
	}()
	go func() {
		defer wg.Done()
		resB, errB = Run(context.Background(), wire.RawDuplex(b))
	}()
	wg.Wait()

	if errA != nil {
		t.Fatalf("side A: %v", errA)
	}
	if errB != nil {
		t.Fatalf("side B: %v", errB)
	}

	plain := []byte("hello")
	ct, err := resA.Send.EncryptPackets(plain)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := resB.Receive.Decrypt(ct)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}

	// And the reverse direction.
	ct2, err := resB.Send.EncryptPackets([]byte("world"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got2, err := resA.Receive.Decrypt(ct2)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(got2) != "world" {
		t.Fatalf("got %q", got2)
	}
}

func TestElectionBreaksTies(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	var initA, initB bool
	var errA, errB error

	go func() {
		defer wg.Done()
		initA, errA = elect(context.Background(), wire.RawDuplex(a))
	}()
	go func() {
		defer wg.Done()
		initB, errB = elect(context.Background(), wire.RawDuplex(b))
	}()
	wg.Wait()

	if errA != nil || errB != nil {
		t.Fatalf("elect errors: %v %v", errA, errB)
	}
	if initA == initB {
		t.Fatalf("exactly one side must be elected initiator, got %v and %v", initA, initB)
	}
}
