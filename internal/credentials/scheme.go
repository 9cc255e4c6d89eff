// Package credentials abstracts how submitted passwords are stored and
// verified, so the handlers never compare credentials themselves.
package credentials

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Scheme encodes and verifies stored credentials.
//
// Comparable reports whether a submitted password can be turned into a value
// directly comparable to the stored column. Deterministic schemes (plaintext)
// return (value, true), which lets the repository embed the password check in
// a single conditional UPDATE/DELETE. Salted schemes return ("", false) and
// the caller must Verify against the fetched record instead.
type Scheme interface {
	Name() string
	Hash(plain string) (string, error)
	Verify(stored, plain string) bool
	Comparable(plain string) (string, bool)
}

// ForName returns the scheme registered under name.
// Supported: "plaintext" (default when name is empty) and "bcrypt".
func ForName(name string) (Scheme, error) {
	switch name {
	case "", "plaintext":
		return Plaintext{}, nil
	case "bcrypt":
		return Bcrypt{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", name)
	}
}

// Plaintext stores the submitted password verbatim. It exists for
// compatibility with pre-existing data, not security.
type Plaintext struct{}

func (Plaintext) Name() string { return "plaintext" }

func (Plaintext) Hash(plain string) (string, error) { return plain, nil }

func (Plaintext) Verify(stored, plain string) bool { return stored == plain }

func (Plaintext) Comparable(plain string) (string, bool) { return plain, true }

// Bcrypt stores bcrypt hashes. Not comparable: verification requires the
// stored hash, so guarded writes are preconditioned on the fetched hash.
type Bcrypt struct{}

func (Bcrypt) Name() string { return "bcrypt" }

func (Bcrypt) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (Bcrypt) Verify(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

func (Bcrypt) Comparable(string) (string, bool) { return "", false }
