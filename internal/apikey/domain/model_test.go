package domain

import (
	"strings"
	"testing"
)

func TestGenerateKeyShape(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey returned error: %v", err)
	}
	if !strings.HasPrefix(key, "lc_") {
		t.Fatalf("expected lc_ prefix, got %q", key)
	}
	if len(key) != len("lc_")+48 {
		t.Fatalf("unexpected key length %d", len(key))
	}

	other, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey returned error: %v", err)
	}
	if key == other {
		t.Fatalf("two generated keys should differ")
	}
}

func TestHashAPIKeyIsStable(t *testing.T) {
	if HashAPIKey("lc_abc") != HashAPIKey("lc_abc") {
		t.Fatalf("hash should be deterministic")
	}
	if HashAPIKey("lc_abc") == HashAPIKey("lc_abd") {
		t.Fatalf("different keys should hash differently")
	}
	if len(HashAPIKey("lc_abc")) != 64 {
		t.Fatalf("expected hex sha256 digest")
	}
}
