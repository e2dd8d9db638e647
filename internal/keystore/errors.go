package keystore

import "errors"

var (
	// ErrLocked is returned when private key material is requested from a
	// keyset that has not been unlocked.
	ErrLocked = errors.New("keyset is locked")

	// ErrWrongPassword is returned when decryption fails.
	ErrWrongPassword = errors.New("wrong password")

	// ErrExists is returned when adding a keyset whose name is taken.
	ErrExists = errors.New("keyset already exists")

	// ErrNotFound is returned when a named keyset has no keyfile.
	ErrNotFound = errors.New("keyset not found")
)
