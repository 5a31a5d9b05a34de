package security

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("secret", "u1", "s1", "d1", "alice@example.com", "admin", time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := ParseAccessToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseAccessToken failed: %v", err)
	}
	if claims.UserID != "u1" || claims.SessionID != "s1" || claims.DeviceID != "d1" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q, want admin", claims.Role)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("secret", "u1", "s1", "d1", "a@b.c", "user", time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if _, err := ParseAccessToken(token, "other-secret"); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	token, err := GenerateAccessToken("secret", "u1", "s1", "d1", "a@b.c", "user", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if _, err := ParseAccessToken(token, "secret"); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestRefreshTokenHashMatches(t *testing.T) {
	token, hash, err := GenerateRefreshToken(64)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("empty refresh token")
	}
	if !bytes.Equal(HashRefreshToken(token), hash) {
		t.Error("hash of the token must match the returned hash")
	}

	other, _, _ := GenerateRefreshToken(64)
	if other == token {
		t.Error("two generated tokens must differ")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil || !ok {
		t.Fatalf("VerifyPassword = %v, %v; want true", ok, err)
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if ok {
		t.Error("wrong password verified")
	}

	// Same password yields a different hash because of the salt.
	again, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("second HashPassword failed: %v", err)
	}
	if bytes.Equal(hash, again) {
		t.Error("hashes should differ across calls")
	}
}

func TestVerifyPasswordParsesStoredFormat(t *testing.T) {
	hash, err := HashPassword("a password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	// The stored form is $argon2id$v=19$t=..,m=..,p=..$salt$hash and
	// must verify without a parse error.
	if got := strings.Count(string(hash), "$"); got != 5 {
		t.Fatalf("hash has %d separators, want 5: %s", got, hash)
	}
	ok, err := VerifyPassword("a password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword errored on its own format: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword rejected the matching password")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, bad := range []string{
		"",
		"not a hash",
		"$argon2id$v=19$t=3,m=65536,p=2$onlyonepart",
		"$bcrypt$v=19$t=3,m=65536,p=2$c2FsdA==$aGFzaA==",
	} {
		if _, err := VerifyPassword("whatever", []byte(bad)); err == nil {
			t.Errorf("hash %q should not parse", bad)
		}
	}
}
