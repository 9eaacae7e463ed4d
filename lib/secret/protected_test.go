// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"testing"
)

func TestProtect_RevealRoundTrip(t *testing.T) {
	source := []byte("correct horse battery staple")
	expected := string(source)

	protected, err := Protect(source)
	if err != nil {
		t.Fatalf("Protect failed: %v", err)
	}
	defer protected.Close()

	for index, value := range source {
		if value != 0 {
			t.Fatalf("source byte %d was not zeroed: got %d", index, value)
		}
	}

	if protected.Len() != len(expected) {
		t.Errorf("Len() = %d, want %d", protected.Len(), len(expected))
	}

	revealed, err := protected.Reveal()
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	defer revealed.Close()

	if revealed.String() != expected {
		t.Errorf("Reveal() = %q, want %q", revealed.String(), expected)
	}
}

func TestProtect_CiphertextHidesPlaintext(t *testing.T) {
	plaintext := "plaintext-marker-value"
	protected, err := Protect([]byte(plaintext))
	if err != nil {
		t.Fatalf("Protect failed: %v", err)
	}
	defer protected.Close()

	if bytes.Contains(protected.ciphertext, []byte(plaintext)) {
		t.Error("ciphertext contains the plaintext")
	}
}

func TestProtect_Empty(t *testing.T) {
	protected, err := Protect([]byte{})
	if err != nil {
		t.Fatalf("Protect(empty) failed: %v", err)
	}
	defer protected.Close()

	revealed, err := protected.Reveal()
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	defer revealed.Close()

	if revealed.Len() != 0 {
		t.Errorf("expected empty reveal, got %d bytes", revealed.Len())
	}
}

func TestProtect_RevealIndependentCopies(t *testing.T) {
	protected, err := Protect([]byte("shared"))
	if err != nil {
		t.Fatalf("Protect failed: %v", err)
	}
	defer protected.Close()

	first, err := protected.Reveal()
	if err != nil {
		t.Fatalf("first Reveal failed: %v", err)
	}
	first.Close()

	second, err := protected.Reveal()
	if err != nil {
		t.Fatalf("second Reveal failed after closing the first copy: %v", err)
	}
	defer second.Close()

	if second.String() != "shared" {
		t.Errorf("second Reveal() = %q, want %q", second.String(), "shared")
	}
}

func TestProtected_RevealAfterClose(t *testing.T) {
	protected, err := Protect([]byte("gone"))
	if err != nil {
		t.Fatalf("Protect failed: %v", err)
	}
	if err := protected.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := protected.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if _, err := protected.Reveal(); err == nil {
		t.Fatal("expected error revealing a closed value")
	}
}

func TestProtectBuffer_LeavesSourceOpen(t *testing.T) {
	source, err := NewFromBytes([]byte("from-buffer"))
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	defer source.Close()

	protected, err := ProtectBuffer(source)
	if err != nil {
		t.Fatalf("ProtectBuffer failed: %v", err)
	}
	defer protected.Close()

	if source.String() != "from-buffer" {
		t.Errorf("source buffer modified: %q", source.String())
	}

	revealed, err := protected.Reveal()
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	defer revealed.Close()

	if !revealed.Equal([]byte("from-buffer")) {
		t.Errorf("Reveal() = %q, want %q", revealed.String(), "from-buffer")
	}
}
