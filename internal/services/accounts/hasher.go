package accounts

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns credentials into salted one-way hashes.
type Hasher interface {
	Hash(credential string) (string, error)
	// Compare returns nil only when credential matches hash.
	Compare(hash, credential string) error
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher() BcryptHasher {
	return BcryptHasher{Cost: bcrypt.DefaultCost}
}

func (h BcryptHasher) Hash(credential string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(credential), h.Cost)
	if err != nil {
		return "", err
	}

	return string(out), nil
}

func (h BcryptHasher) Compare(hash, credential string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return errMismatch
	}

	return err
}

var errMismatch = errors.New("credential mismatch")

// bcrypt ignores everything past 72 bytes.
const maxCredentialBytes = 72
