package contracts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tellor-io/telliot-kadena/internal/chainweb"
	"github.com/tellor-io/telliot-kadena/internal/models"
)

// Token reads balances of the oracle's staking token (f-TRB) and the native
// coin module.
type Token struct {
	*Module
}

// NewToken binds the f-TRB token module to a Chainweb client.
func NewToken(client *chainweb.Client) *Token {
	return &Token{Module: NewModule(client, "f-TRB")}
}

// Balance returns an account's TRB balance in whole tokens.
func (t *Token) Balance(ctx context.Context, account string) (float64, error) {
	data, err := t.Read(ctx, "get-balance", account)
	if err != nil {
		return 0, err
	}
	return parseBalance(data)
}

// NativeBalance returns an account's KDA balance in whole tokens.
func (t *Token) NativeBalance(ctx context.Context, account string) (float64, error) {
	data, err := t.ReadAny(ctx, "coin", "get-balance", account)
	if err != nil {
		return 0, err
	}
	return parseBalance(data)
}

func parseBalance(data json.RawMessage) (float64, error) {
	var balance models.PactDecimal
	if err := json.Unmarshal(data, &balance); err != nil {
		return 0, fmt.Errorf("error parsing balance: %w", err)
	}
	return balance.Value, nil
}
