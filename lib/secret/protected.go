// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"crypto/rand"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// Protected holds a value encrypted under the process key. Only the
// ciphertext lives on the Go heap; the plaintext exists solely inside
// the Buffer returned by Reveal, for as long as the caller keeps it open.
//
// A Protected is safe for concurrent use.
type Protected struct {
	mu         sync.Mutex
	nonce      []byte
	ciphertext []byte
	length     int
	closed     bool
}

var (
	processKeyOnce  sync.Once
	processKey      *Buffer
	processKeyError error
)

// sessionKey returns the per-process XChaCha20-Poly1305 key, generating
// it on first use. The key is never written anywhere; Protected values
// do not survive the process.
func sessionKey() (*Buffer, error) {
	processKeyOnce.Do(func() {
		key, err := New(chacha20poly1305.KeySize)
		if err != nil {
			processKeyError = fmt.Errorf("allocating process key: %w", err)
			return
		}
		if _, err := rand.Read(key.Bytes()); err != nil {
			key.Close()
			processKeyError = fmt.Errorf("generating process key: %w", err)
			return
		}
		processKey = key
	})
	return processKey, processKeyError
}

// Protect encrypts plaintext into a new Protected and zeros plaintext
// in place. A nil or empty plaintext produces an empty Protected.
func Protect(plaintext []byte) (*Protected, error) {
	defer Zero(plaintext)

	key, err := sessionKey()
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("secret: creating cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("secret: generating nonce: %w", err)
	}

	return &Protected{
		nonce:      nonce,
		ciphertext: aead.Seal(nil, nonce, plaintext, nil),
		length:     len(plaintext),
	}, nil
}

// ProtectBuffer is Protect for a value already held in a Buffer. The
// buffer is borrowed and left open.
func ProtectBuffer(buffer *Buffer) (*Protected, error) {
	scratch, err := New(buffer.Len())
	if err != nil {
		return nil, err
	}
	defer scratch.Close()
	copy(scratch.Bytes(), buffer.Bytes())
	return Protect(scratch.Bytes())
}

// Reveal decrypts the value into a new Buffer. The plaintext is written
// straight into the mmap region. The caller owns the returned buffer
// and must Close it.
func (p *Protected) Reveal() (*Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("secret: reveal of closed value")
	}

	key, err := sessionKey()
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("secret: creating cipher: %w", err)
	}

	buffer, err := New(p.length)
	if err != nil {
		return nil, err
	}
	// Open appends to dst; the mmap region has capacity for the full
	// plaintext, so no heap copy is made.
	if _, err := aead.Open(buffer.Bytes()[:0], p.nonce, p.ciphertext, nil); err != nil {
		buffer.Close()
		return nil, fmt.Errorf("secret: decrypting protected value: %w", err)
	}
	return buffer, nil
}

// Len returns the plaintext length.
func (p *Protected) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.length
}

// Close scrubs the ciphertext. Reveal fails afterwards. Idempotent.
func (p *Protected) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	Zero(p.ciphertext)
	Zero(p.nonce)
	p.ciphertext = nil
	p.nonce = nil
	return nil
}
