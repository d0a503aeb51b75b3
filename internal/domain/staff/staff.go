// Package staff models the operator accounts behind the terminal's staff
// switcher. Passcodes are a convenience lock, not a security boundary, but
// they are still stored as peppered HMAC hashes and compared in constant
// time.
package staff

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/go-faster/errors"
)

// Sentinel errors for staff lookup and verification.
var (
	ErrNotFound        = errors.New("staff member not found")
	ErrInvalidPasscode = errors.New("invalid passcode")
)

// Staff is one operator account.
type Staff struct {
	ID           string
	Name         string
	Role         string
	PasscodeHash string
}

// Repository defines lookup operations for staff accounts.
type Repository interface {
	List(ctx context.Context) ([]Staff, error)
	GetByID(ctx context.Context, id string) (*Staff, error)
}

// HashPasscode returns the hex HMAC-SHA256 of the passcode under the pepper.
func HashPasscode(passcode string, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(passcode))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verifier checks staff passcodes against their stored hashes.
type Verifier struct {
	repo   Repository
	pepper []byte
}

// NewVerifier creates a Verifier with the given HMAC pepper.
func NewVerifier(repo Repository, pepper []byte) *Verifier {
	return &Verifier{repo: repo, pepper: pepper}
}

// Verify authenticates a staff member by id and passcode. The comparison is
// constant time so response timing leaks nothing about the stored hash.
func (v *Verifier) Verify(ctx context.Context, id, passcode string) (*Staff, error) {
	s, err := v.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidPasscode
		}
		return nil, errors.Wrap(err, "lookup staff")
	}

	computed := HashPasscode(passcode, v.pepper)
	if subtle.ConstantTimeCompare([]byte(computed), []byte(s.PasscodeHash)) != 1 {
		return nil, ErrInvalidPasscode
	}
	return s, nil
}
