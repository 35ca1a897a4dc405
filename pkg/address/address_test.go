package address

import "testing"

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"tcp@127.0.0.1:8080",
		"itcp@127.0.0.1:8080",
		"unix@mysocket.sock",
		"iunix@a/mysocket.sock",
		"wss@example.com:9090/canary",
		"ws@example.com:9090/canary",
	}
	for _, s := range cases {
		addr, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := addr.String(); got != s {
			t.Fatalf("round trip mismatch: got %q, want %q", got, s)
		}
	}
}

func TestParseSplitsAtLastAt(t *testing.T) {
	// The split is at the last "@": any earlier "@" stays on the scheme
	// side, where no recognized scheme token matches it.
	if _, err := Parse("wss@user@example.com:9090/canary"); err == nil {
		t.Fatal("expected error: embedded '@' makes the scheme token invalid")
	}
	addr, err := Parse("unix@folder/address.sock")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if addr.Scheme != Unix || addr.Host != "folder/address.sock" {
		t.Fatalf("unexpected address: %+v", addr)
	}
}

func TestParseRejectsMissingAt(t *testing.T) {
	if _, err := Parse("tcp127.0.0.1:8080"); err == nil {
		t.Fatal("expected error parsing address with no '@'")
	}
}

func TestParseRejectsUnknownScheme(t *testing.T) {
	if _, err := Parse("ftp@example.com"); err == nil {
		t.Fatal("expected error parsing unknown scheme")
	}
}

func TestParseRejectsEmptyHost(t *testing.T) {
	if _, err := Parse("tcp@"); err == nil {
		t.Fatal("expected error parsing address with empty host")
	}
}

func TestSchemeEncrypted(t *testing.T) {
	encrypted := []Scheme{Tcp, Unix, Wss}
	insecure := []Scheme{InsecureTcp, InsecureUnix, Ws}
	for _, s := range encrypted {
		if !s.Encrypted() {
			t.Fatalf("expected %v to be encrypted", s)
		}
	}
	for _, s := range insecure {
		if s.Encrypted() {
			t.Fatalf("expected %v to be insecure", s)
		}
	}
}

func TestParseServiceRoundTrip(t *testing.T) {
	s := "my_service://tcp@127.0.0.1:8080"
	svc, err := ParseService(s)
	if err != nil {
		t.Fatalf("ParseService: %v", err)
	}
	if svc.ID != "my_service" {
		t.Fatalf("expected id my_service, got %q", svc.ID)
	}
	if svc.Address.Scheme != Tcp || svc.Address.Host != "127.0.0.1:8080" {
		t.Fatalf("unexpected address: %+v", svc.Address)
	}
	if got := svc.String(); got != s {
		t.Fatalf("round trip mismatch: got %q, want %q", got, s)
	}
}

func TestParseServiceRejectsMissingScheme(t *testing.T) {
	if _, err := ParseService("my_service://127.0.0.1:8080"); err == nil {
		t.Fatal("expected error parsing service address with no scheme")
	}
}
