package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/tellor-io/telliot-kadena/internal/chainweb"
	"github.com/tellor-io/telliot-kadena/internal/keystore"
	"github.com/tellor-io/telliot-kadena/internal/models"
	"github.com/tellor-io/telliot-kadena/internal/pact"
)

// TellorFlex drives the tellorflex oracle module with an unlocked keyset.
type TellorFlex struct {
	*Module

	keyset   *keystore.Keyset
	gasPrice float64
	gasLimit int
}

// NewTellorFlex binds the tellorflex module to a keyset used for signing and
// gas payment.
func NewTellorFlex(client *chainweb.Client, keyset *keystore.Keyset, gasPrice float64, gasLimit int) *TellorFlex {
	return &TellorFlex{
		Module:   NewModule(client, "tellorflex"),
		keyset:   keyset,
		gasPrice: gasPrice,
		gasLimit: gasLimit,
	}
}

func (t *TellorFlex) buildMeta() models.Meta {
	return pact.MkMeta(t.keyset.Name, t.chainID, t.gasPrice, t.gasLimit)
}

// SubmitValue submits an oracle value for a query id. Returns the receipt
// status; a failure receipt is an error.
func (t *TellorFlex) SubmitValue(ctx context.Context, queryID, value string, nonce int64, queryData string) (string, error) {
	code := fmt.Sprintf(
		`(%s.tellorflex.submit-value (read-string "queryId") (read-string "value")`+
			` (read-integer "nonce") (read-string "queryData") (read-string "staker"))`,
		t.namespace)

	keyPairs, err := t.keyset.SignatureKeyPairs()
	if err != nil {
		return "", err
	}

	req, err := pact.SimpleExecCmd(pact.ExecCmdParams{
		Code:     code,
		Meta:     t.buildMeta(),
		KeyPairs: keyPairs,
		EnvData: map[string]interface{}{
			"queryId":   queryID,
			"value":     value,
			"nonce":     nonce,
			"queryData": queryData,
			"staker":    t.keyset.Name,
		},
		NetworkID: t.networkID,
	})
	if err != nil {
		return "", err
	}

	receipt, err := t.send(ctx, req)
	if err != nil {
		return "", fmt.Errorf("error sending submit-value: %w", err)
	}
	if receipt == models.StatusFailure {
		return "", fmt.Errorf("submit-value txn failed")
	}
	return receipt, nil
}

// DepositStake deposits a stake of the given amount (in 1e18 grains) for the
// keyset's account.
func (t *TellorFlex) DepositStake(ctx context.Context, amount float64) (string, error) {
	code := fmt.Sprintf(
		`(%s.tellorflex.deposit-stake (read-msg "reporter") (read-keyset "keyset") (read-integer "amount"))`,
		t.namespace)

	keyPairs, err := t.keyset.SignatureKeyPairs()
	if err != nil {
		return "", err
	}
	if len(keyPairs) == 0 {
		return "", fmt.Errorf("keyset %s has no keys to sign with", t.keyset.Name)
	}

	reporter := t.keyset.Name
	caps := []models.Capability{
		{Args: []interface{}{reporter, "tellorflex", amount / 1e18}, Name: t.namespace + ".f-TRB.TRANSFER"},
		{Args: []interface{}{}, Name: "coin.GAS"},
		{Args: []interface{}{reporter}, Name: t.namespace + ".tellorflex.STAKER"},
	}
	// Capabilities are granted through the final signer.
	keyPairs[len(keyPairs)-1].Clist = caps

	// read-integer needs an exact integer; render the grains without
	// float exponent notation.
	grains, _ := new(big.Float).SetFloat64(amount).Int(nil)

	req, err := pact.SimpleExecCmd(pact.ExecCmdParams{
		Code:     code,
		Meta:     t.buildMeta(),
		KeyPairs: keyPairs,
		EnvData: map[string]interface{}{
			"amount":   grains,
			"keyset":   t.keyset.Guard(),
			"reporter": reporter,
		},
		NetworkID: t.networkID,
	})
	if err != nil {
		return "", err
	}

	receipt, err := t.send(ctx, req)
	if err != nil {
		return "", fmt.Errorf("error sending deposit-stake: %w", err)
	}
	if receipt == models.StatusFailure {
		return "", fmt.Errorf("deposit-stake txn failed")
	}
	return receipt, nil
}

// GetStakerInfo reads the staking state for an account. An account the
// module has never seen yields a zero StakerInfo.
func (t *TellorFlex) GetStakerInfo(ctx context.Context, staker string) (*models.StakerInfo, error) {
	data, err := t.Read(ctx, "get-staker-info", staker)
	if err != nil {
		if isRowNotFound(err, staker) {
			return &models.StakerInfo{}, nil
		}
		return nil, fmt.Errorf("error getting staker info: %w", err)
	}
	return models.ParseStakerInfo(data)
}

// GetNewValueCountByQueryID returns the number of values reported for a
// query id, which serves as the next submission nonce.
func (t *TellorFlex) GetNewValueCountByQueryID(ctx context.Context, queryID string) (int64, error) {
	data, err := t.Read(ctx, "get-new-value-count-by-query-id", queryID)
	if err != nil {
		if isRowNotFound(err, queryID) {
			return 0, nil
		}
		return 0, fmt.Errorf("error reading new value count: %w", err)
	}
	var count models.PactInt
	if err := json.Unmarshal(data, &count); err != nil {
		return 0, fmt.Errorf("error parsing new value count: %w", err)
	}
	return count.Int64(), nil
}

// StakeAmount returns the oracle's current stake requirement in grains.
func (t *TellorFlex) StakeAmount(ctx context.Context) (float64, error) {
	data, err := t.Read(ctx, "stake-amount")
	if err != nil {
		return 0, err
	}
	var amount models.PactDecimal
	if err := json.Unmarshal(data, &amount); err != nil {
		return 0, fmt.Errorf("error parsing stake amount: %w", err)
	}
	return amount.Value, nil
}

// isRowNotFound matches the module's "row not found" read error for a key.
func isRowNotFound(err error, key string) bool {
	return strings.Contains(err.Error(), "row not found: "+key)
}
