package pkce

import "testing"

const (
	rfcVerifier  = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	rfcChallenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
)

func TestChallengeS256RFCVector(t *testing.T) {
	if got := ChallengeS256(rfcVerifier); got != rfcChallenge {
		t.Fatalf("challenge=%q want %q", got, rfcChallenge)
	}
}

func TestVerify(t *testing.T) {
	cases := []struct {
		name      string
		method    string
		challenge string
		verifier  string
		want      bool
	}{
		{"s256 ok", MethodS256, rfcChallenge, rfcVerifier, true},
		{"s256 wrong verifier", MethodS256, rfcChallenge, rfcVerifier + "x", false},
		{"s256 challenge used as verifier", MethodS256, rfcChallenge, rfcChallenge, false},
		{"plain ok", MethodPlain, "abc", "abc", true},
		{"plain mismatch", MethodPlain, "abc", "abd", false},
		{"empty method is plain", "", "abc", "abc", true},
		{"unknown method", "S512", rfcChallenge, rfcVerifier, false},
		{"empty verifier", MethodS256, rfcChallenge, "", false},
		{"empty challenge", MethodPlain, "", "abc", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Verify(tc.method, tc.challenge, tc.verifier); got != tc.want {
				t.Fatalf("Verify()=%v want %v", got, tc.want)
			}
		})
	}
}

func TestValidMethod(t *testing.T) {
	for m, want := range map[string]bool{"S256": true, "plain": true, "": false, "s256": false} {
		if ValidMethod(m) != want {
			t.Fatalf("ValidMethod(%q) != %v", m, want)
		}
	}
}
