package keystore

import (
	"fmt"

	"github.com/tellor-io/telliot-kadena/internal/pact"
)

// keysetRecord mirrors the keyfile JSON layout.
type keysetRecord struct {
	Chains   []int          `json:"chains"`
	Pred     string         `json:"pred"`
	Keystore []EncryptedKey `json:"keystore_json"`
	Address  []string       `json:"address"`
}

// Keyset is a named Kadena keyset held in the keystore. Private keys stay
// encrypted until Unlock is called.
type Keyset struct {
	Name string

	record keysetRecord
	keys   []string // decrypted private keys, nil while locked
}

// Chains returns the chain ids the keyset is registered for.
func (k *Keyset) Chains() []int {
	return k.record.Chains
}

// Pred returns the keyset's signing predicate (e.g. "keys-all").
func (k *Keyset) Pred() string {
	return k.record.Pred
}

// Addresses returns the keyset's public keys.
func (k *Keyset) Addresses() []string {
	return k.record.Address
}

// IsUnlocked reports whether private keys are currently decrypted.
func (k *Keyset) IsUnlocked() bool {
	return k.keys != nil
}

// Unlock decrypts the keyset's private keys with the given password.
func (k *Keyset) Unlock(password string) error {
	if k.IsUnlocked() {
		return nil
	}
	keys, err := DecryptKeys(k.record.Keystore, password)
	if err != nil {
		return fmt.Errorf("error unlocking keyset %s: %w", k.Name, err)
	}
	k.keys = keys
	return nil
}

// Lock discards the decrypted private keys.
func (k *Keyset) Lock() {
	k.keys = nil
}

// Keys returns the decrypted private keys. The keyset must be unlocked.
func (k *Keyset) Keys() ([]string, error) {
	if !k.IsUnlocked() {
		return nil, fmt.Errorf("%s: %w", k.Name, ErrLocked)
	}
	return k.keys, nil
}

// SignatureKeyPairs returns one pact key pair per private key, public keys
// restored from the seeds. The keyset must be unlocked.
func (k *Keyset) SignatureKeyPairs() ([]pact.KeyPair, error) {
	keys, err := k.Keys()
	if err != nil {
		return nil, err
	}
	pairs := make([]pact.KeyPair, 0, len(keys))
	for _, key := range keys {
		pub, err := RestorePublicKey(key)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pact.KeyPair{PublicKey: pub, SecretKey: key})
	}
	return pairs, nil
}

// Guard returns the keyset guard object passed as read-keyset environment
// data.
func (k *Keyset) Guard() map[string]interface{} {
	return map[string]interface{}{
		"pred": k.record.Pred,
		"keys": k.record.Address,
	}
}
