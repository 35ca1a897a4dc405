package channel

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"

	"canary/internal/carrier"
	"canary/internal/noise"
)

func TestChannelSurfaceSplitInPlace(t *testing.T) {
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })

	ch := New(WrapRaw(a, carrier.Any))
	if ch.Unified() == nil || ch.Bipartite() != nil {
		t.Fatal("fresh channel must be Unified")
	}
	if _, err := ch.SendHalf(); err == nil {
		t.Fatal("expected error taking a half before Split")
	}

	bp := ch.Split()
	if ch.Unified() != nil || ch.Bipartite() != bp {
		t.Fatal("Split must convert the channel in place")
	}
	if again := ch.Split(); again != bp {
		t.Fatal("Split on a Bipartite channel must return the existing halves")
	}

	send, err := ch.SendHalf()
	if err != nil || send == nil {
		t.Fatalf("SendHalf: %v", err)
	}
	recv, err := ch.ReceiveHalf()
	if err != nil || recv == nil {
		t.Fatalf("ReceiveHalf: %v", err)
	}
}

func TestChannelSurfaceEncryptAfterSplitReturnsTransport(t *testing.T) {
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })

	ch := New(WrapRaw(a, carrier.Any))
	ch.Split()
	reuse := &noise.Result{}
	if got := ch.Encrypt(reuse); got != reuse {
		t.Fatalf("expected transport handed back unchanged, got %v", got)
	}
}

// Both sides handshake, the client splits, and a sender task and a receiver
// task run concurrently against a server that echoes each integer's decimal
// representation. Every n-th receive must match the n-th send.
func TestSplitEncryptedConcurrentSendReceive(t *testing.T) {
	const n = 100

	pa, pb := net.Pipe()
	t.Cleanup(func() { pa.Close(); pb.Close() })

	hsClient := NewHandshake(WrapRaw(pa, carrier.Any))
	hsServer := NewHandshake(WrapRaw(pb, carrier.Any))

	var wg sync.WaitGroup
	wg.Add(2)
	var client, server *UnifiedChannel
	var errClient, errServer error
	go func() {
		defer wg.Done()
		client, errClient = hsClient.Encrypted(context.Background())
	}()
	go func() {
		defer wg.Done()
		server, errServer = hsServer.Encrypted(context.Background())
	}()
	wg.Wait()
	if errClient != nil || errServer != nil {
		t.Fatalf("handshake errors: %v %v", errClient, errServer)
	}

	serverDone := make(chan error, 1)
	go func() {
		ctx := context.Background()
		for i := 0; i < n; i++ {
			var v int
			if err := server.Receive(ctx, &v); err != nil {
				serverDone <- err
				return
			}
			if _, err := server.Send(ctx, strconv.Itoa(v)); err != nil {
				serverDone <- err
				return
			}
		}
		serverDone <- nil
	}()

	bp := client.Split()

	sendDone := make(chan error, 1)
	go func() {
		ctx := context.Background()
		for i := 0; i < n; i++ {
			if _, err := bp.Send.Send(ctx, i); err != nil {
				sendDone <- err
				return
			}
		}
		sendDone <- nil
	}()

	recvDone := make(chan error, 1)
	got := make([]string, 0, n)
	go func() {
		ctx := context.Background()
		for i := 0; i < n; i++ {
			var s string
			if err := bp.Receive.Receive(ctx, &s); err != nil {
				recvDone <- err
				return
			}
			got = append(got, s)
		}
		recvDone <- nil
	}()

	if err := <-sendDone; err != nil {
		t.Fatalf("sender: %v", err)
	}
	if err := <-recvDone; err != nil {
		t.Fatalf("receiver: %v", err)
	}
	if err := <-serverDone; err != nil {
		t.Fatalf("server: %v", err)
	}

	for i, s := range got {
		if s != strconv.Itoa(i) {
			t.Fatalf("receive %d: got %q", i, s)
		}
	}
}
