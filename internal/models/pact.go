package models

// Wire types for Pact exec commands. Field order matters: the command JSON
// is hashed and signed byte-for-byte, so the struct layouts below must keep
// the canonical field order used by the Chainweb tooling.

// Meta is the public metadata attached to every transaction.
type Meta struct {
	CreationTime int64   `json:"creationTime"`
	TTL          int     `json:"ttl"`
	GasLimit     int     `json:"gasLimit"`
	ChainID      string  `json:"chainId"`
	GasPrice     float64 `json:"gasPrice"`
	Sender       string  `json:"sender"`
}

// Capability is a Pact capability granted to a signer.
type Capability struct {
	Args []interface{} `json:"args"`
	Name string        `json:"name"`
}

// Signer identifies a transaction signer and the capabilities it scopes.
type Signer struct {
	PubKey string       `json:"pubKey"`
	Clist  []Capability `json:"clist,omitempty"`
}

// Exec carries the Pact code and its environment data.
type Exec struct {
	Data map[string]interface{} `json:"data"`
	Code string                 `json:"code"`
}

// Payload wraps the exec section of a command.
type Payload struct {
	Exec Exec `json:"exec"`
}

// ExecCmd is the unsigned command document. NetworkID is null for local
// (read-only) commands.
type ExecCmd struct {
	NetworkID *string  `json:"networkId"`
	Payload   Payload  `json:"payload"`
	Signers   []Signer `json:"signers"`
	Meta      Meta     `json:"meta"`
	Nonce     string   `json:"nonce"`
}

// Sig is a single detached signature.
type Sig struct {
	Sig string `json:"sig"`
}

// SignedCommand is the hashed, signed command as submitted to /send or /local.
type SignedCommand struct {
	Hash string `json:"hash"`
	Sigs []Sig  `json:"sigs"`
	Cmd  string `json:"cmd"`
}

// SendRequest is the body of a /send request.
type SendRequest struct {
	Cmds []SignedCommand `json:"cmds"`
}

// SendResponse carries the request keys returned by /send.
type SendResponse struct {
	RequestKeys []string `json:"requestKeys"`
}

// PollRequest is the body of a /poll request.
type PollRequest struct {
	RequestKeys []string `json:"requestKeys"`
}
