package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

// Argon2i cost parameters (libsodium interactive profile). The derived key
// opens an XSalsa20-Poly1305 secretbox around each private key.
const (
	kdfSaltSize = 16
	kdfTime     = 4
	kdfMemory   = 32 * 1024 // KiB
	kdfThreads  = 1

	boxKeySize   = 32
	boxNonceSize = 24
)

// EncryptedKey is one password-encrypted private key. All fields are
// hex-encoded.
type EncryptedKey struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
	Salt       string `json:"salt"`
}

// EncryptKeys encrypts a list of hex private keys with a password. Each key
// gets a fresh salt and nonce.
func EncryptKeys(privateKeys []string, password string) ([]EncryptedKey, error) {
	encrypted := make([]EncryptedKey, 0, len(privateKeys))
	for _, privateKey := range privateKeys {
		keyBytes, err := hex.DecodeString(privateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid private key hex: %w", err)
		}

		salt := make([]byte, kdfSaltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("error generating salt: %w", err)
		}
		var nonce [boxNonceSize]byte
		if _, err := rand.Read(nonce[:]); err != nil {
			return nil, fmt.Errorf("error generating nonce: %w", err)
		}

		var boxKey [boxKeySize]byte
		copy(boxKey[:], argon2.Key([]byte(password), salt, kdfTime, kdfMemory, kdfThreads, boxKeySize))

		ciphertext := secretbox.Seal(nil, keyBytes, &nonce, &boxKey)
		encrypted = append(encrypted, EncryptedKey{
			Ciphertext: hex.EncodeToString(ciphertext),
			Nonce:      hex.EncodeToString(nonce[:]),
			Salt:       hex.EncodeToString(salt),
		})
	}
	return encrypted, nil
}

// DecryptKeys decrypts a list of encrypted private keys with a password and
// returns them hex-encoded.
func DecryptKeys(encrypted []EncryptedKey, password string) ([]string, error) {
	keys := make([]string, 0, len(encrypted))
	for _, enc := range encrypted {
		salt, err := hex.DecodeString(enc.Salt)
		if err != nil {
			return nil, fmt.Errorf("invalid salt hex: %w", err)
		}
		ciphertext, err := hex.DecodeString(enc.Ciphertext)
		if err != nil {
			return nil, fmt.Errorf("invalid ciphertext hex: %w", err)
		}
		nonceBytes, err := hex.DecodeString(enc.Nonce)
		if err != nil {
			return nil, fmt.Errorf("invalid nonce hex: %w", err)
		}
		if len(nonceBytes) != boxNonceSize {
			return nil, fmt.Errorf("invalid nonce size %d", len(nonceBytes))
		}
		var nonce [boxNonceSize]byte
		copy(nonce[:], nonceBytes)

		var boxKey [boxKeySize]byte
		copy(boxKey[:], argon2.Key([]byte(password), salt, kdfTime, kdfMemory, kdfThreads, boxKeySize))

		plaintext, ok := secretbox.Open(nil, ciphertext, &nonce, &boxKey)
		if !ok {
			return nil, ErrWrongPassword
		}
		keys = append(keys, hex.EncodeToString(plaintext))
	}
	return keys, nil
}

// RestorePublicKey derives the hex ed25519 public key from a 64-character
// hex seed.
func RestorePublicKey(seed string) (string, error) {
	if seed == "" {
		return "", fmt.Errorf("seed for key pair generation not provided")
	}
	if len(seed) != 2*ed25519.SeedSize {
		return "", fmt.Errorf("seed for key pair generation has bad size")
	}
	seedBytes, err := hex.DecodeString(seed)
	if err != nil {
		return "", fmt.Errorf("invalid seed hex: %w", err)
	}
	priv := ed25519.NewKeyFromSeed(seedBytes)
	return hex.EncodeToString(priv.Public().(ed25519.PublicKey)), nil
}
