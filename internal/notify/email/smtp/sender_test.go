package smtp

import "testing"

func TestResolveTLSModePortDefaults(t *testing.T) {
	cases := []struct {
		port    int
		tlsMode string
		want    TLSMode
	}{
		{465, "", TLSModeImplicit},
		{587, "", TLSModeStartTLS},
		{25, "disabled", TLSModeDisabled},
		{587, "implicit", TLSModeImplicit},
		{587, "STARTTLS", TLSModeStartTLS},
	}
	for _, tc := range cases {
		s := NewSender("smtp.example.com", tc.port, "", "", tc.tlsMode, false)
		got, err := s.resolveTLSMode()
		if err != nil {
			t.Fatalf("resolveTLSMode(port=%d, mode=%q) unexpected error: %v", tc.port, tc.tlsMode, err)
		}
		if got != tc.want {
			t.Fatalf("resolveTLSMode(port=%d, mode=%q)=%q, want %q", tc.port, tc.tlsMode, got, tc.want)
		}
	}
}

func TestParseTLSModeInvalid(t *testing.T) {
	if _, err := parseTLSMode("tlsv9"); err == nil {
		t.Fatal("expected error for unknown tls mode")
	}
}
