package pact

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tellor-io/telliot-kadena/internal/models"
)

// DefaultTTL is the transaction validity window in seconds.
const DefaultTTL = 1800

// KeyPair is a hex-encoded ed25519 key pair, optionally scoped to a
// capability list.
type KeyPair struct {
	PublicKey string
	SecretKey string
	Clist     []models.Capability
}

// SigData is the outcome of signing a command with one key pair. Sig is nil
// when the key pair could not sign (unsigned signer slot).
type SigData struct {
	Hash   string
	Sig    *string
	PubKey string
}

// SignMsg hashes a message with Blake2b-256 and signs the digest with the
// key pair's ed25519 secret key.
func SignMsg(msg string, kp KeyPair) (SigData, error) {
	if kp.PublicKey == "" || kp.SecretKey == "" {
		return SigData{}, fmt.Errorf("invalid key pair: public and secret keys are required")
	}
	seed, err := hex.DecodeString(kp.SecretKey)
	if err != nil {
		return SigData{}, fmt.Errorf("invalid secret key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return SigData{}, fmt.Errorf("invalid secret key: expected %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	hashBin := HashBin(msg)
	sig := hex.EncodeToString(ed25519.Sign(ed25519.NewKeyFromSeed(seed), hashBin))
	return SigData{
		Hash:   Base64URLEncode(hashBin),
		Sig:    &sig,
		PubKey: kp.PublicKey,
	}, nil
}

// AttachSig signs a message with every key pair. Key pairs without a secret
// key produce an unsigned slot. An empty key pair list yields a single
// unsigned entry carrying the message hash.
func AttachSig(msg string, keyPairs []KeyPair) ([]SigData, error) {
	hash := Base64URLEncode(HashBin(msg))
	if len(keyPairs) == 0 {
		return []SigData{{Hash: hash}}, nil
	}

	sigs := make([]SigData, 0, len(keyPairs))
	for _, kp := range keyPairs {
		if kp.PublicKey == "" || kp.SecretKey == "" {
			sigs = append(sigs, SigData{Hash: hash, PubKey: kp.PublicKey})
			continue
		}
		sig, err := SignMsg(msg, kp)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// MkMeta builds transaction metadata with the current time as creation time.
func MkMeta(sender, chainID string, gasPrice float64, gasLimit int) models.Meta {
	return models.Meta{
		CreationTime: time.Now().Unix(),
		TTL:          DefaultTTL,
		GasLimit:     gasLimit,
		ChainID:      chainID,
		GasPrice:     gasPrice,
		Sender:       sender,
	}
}

// FormattedTime returns the current UTC time in ISO 8601 form, used as the
// default command nonce.
func FormattedTime() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000") + " UTC"
}

func mkSigner(kp KeyPair) models.Signer {
	return models.Signer{PubKey: kp.PublicKey, Clist: kp.Clist}
}

// pullAndCheckHashes verifies that all signatures cover the same hash and
// returns it.
func pullAndCheckHashes(sigs []SigData) (string, error) {
	if len(sigs) == 0 {
		return "", fmt.Errorf("empty signature list")
	}
	hash := sigs[0].Hash
	for _, sig := range sigs[1:] {
		if sig.Hash != hash {
			return "", fmt.Errorf("signatures for different hashes found")
		}
	}
	return hash, nil
}

func mkSingleCmd(sigs []SigData, cmd string) (models.SignedCommand, error) {
	hash, err := pullAndCheckHashes(sigs)
	if err != nil {
		return models.SignedCommand{}, err
	}
	signed := models.SignedCommand{Hash: hash, Sigs: []models.Sig{}, Cmd: cmd}
	for _, sig := range sigs {
		if sig.Sig != nil {
			signed.Sigs = append(signed.Sigs, models.Sig{Sig: *sig.Sig})
		}
	}
	return signed, nil
}

// ExecCmdParams collects everything needed to build a signed exec command.
type ExecCmdParams struct {
	Code      string
	Meta      models.Meta
	Nonce     string                 // defaults to FormattedTime()
	KeyPairs  []KeyPair              // may be empty for unsigned local reads
	EnvData   map[string]interface{} // read-msg environment, may be nil
	NetworkID string                 // empty for local commands
}

// PrepareExecCmd builds, serializes and signs a Pact exec command. The
// command JSON is hashed with Blake2b-256 and each key pair signs the digest.
func PrepareExecCmd(p ExecCmdParams) (models.SignedCommand, error) {
	nonce := p.Nonce
	if nonce == "" {
		nonce = FormattedTime()
	}

	var networkID *string
	if p.NetworkID != "" {
		networkID = &p.NetworkID
	}

	signers := make([]models.Signer, 0, len(p.KeyPairs))
	for _, kp := range p.KeyPairs {
		signers = append(signers, mkSigner(kp))
	}

	cmdDoc := models.ExecCmd{
		NetworkID: networkID,
		Payload:   models.Payload{Exec: models.Exec{Data: p.EnvData, Code: p.Code}},
		Signers:   signers,
		Meta:      p.Meta,
		Nonce:     nonce,
	}
	cmdJSON, err := json.Marshal(cmdDoc)
	if err != nil {
		return models.SignedCommand{}, fmt.Errorf("error marshaling command: %w", err)
	}

	sigs, err := AttachSig(string(cmdJSON), p.KeyPairs)
	if err != nil {
		return models.SignedCommand{}, err
	}
	return mkSingleCmd(sigs, string(cmdJSON))
}

// SimpleExecCmd builds a signed exec command and wraps it in a /send request.
func SimpleExecCmd(p ExecCmdParams) (models.SendRequest, error) {
	cmd, err := PrepareExecCmd(p)
	if err != nil {
		return models.SendRequest{}, err
	}
	return models.SendRequest{Cmds: []models.SignedCommand{cmd}}, nil
}
