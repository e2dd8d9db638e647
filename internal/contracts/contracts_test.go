package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellor-io/telliot-kadena/internal/chainweb"
	"github.com/tellor-io/telliot-kadena/internal/keystore"
	"github.com/tellor-io/telliot-kadena/internal/models"
)

const testKey = "e801be41519661288dc8c3aa704708391ac4a3fdfea6bfd6b7a5ae2027c0d407"

// pactNode fakes the Pact REST endpoints of a Chainweb node.
type pactNode struct {
	localResult  string
	sendKeys     []string
	pollResult   string
	lastLocalCmd models.SignedCommand
	lastSendReq  models.SendRequest
}

func (n *pactNode) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/local":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&n.lastLocalCmd))
			fmt.Fprint(w, n.localResult)
		case "/send":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&n.lastSendReq))
			resp, _ := json.Marshal(models.SendResponse{RequestKeys: n.sendKeys})
			w.Write(resp)
		case "/poll":
			fmt.Fprint(w, n.pollResult)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}
}

func newTestClient(t *testing.T, node *pactNode) *chainweb.Client {
	server := httptest.NewServer(node.handler(t))
	t.Cleanup(server.Close)

	client := chainweb.NewClient(models.ChainwebEndpoint{
		ChainID: 1,
		Network: "testnet04",
		URL:     server.URL + "/",
	})
	client.Backoff = func(int) time.Duration { return 0 }
	return client
}

func unlockedKeyset(t *testing.T) *keystore.Keyset {
	t.Helper()
	store, err := keystore.NewStoreAt(t.TempDir())
	require.NoError(t, err)
	keyset, err := store.Add("reporter", "keys-all", []int{1}, []string{testKey}, "pw")
	require.NoError(t, err)
	require.NoError(t, keyset.Unlock("pw"))
	return keyset
}

func TestModuleNamespace(t *testing.T) {
	node := &pactNode{}
	module := NewModule(newTestClient(t, node), "tellorflex")
	assert.Equal(t, "free", module.Namespace())
}

func TestModuleRead(t *testing.T) {
	node := &pactNode{
		localResult: `{"reqKey": "k", "result": {"status": "success", "data": {"decimal": "250000000000000000000"}}}`,
	}
	module := NewModule(newTestClient(t, node), "tellorflex")

	data, err := module.Read(context.Background(), "stake-amount")
	require.NoError(t, err)
	assert.JSONEq(t, `{"decimal": "250000000000000000000"}`, string(data))

	// Local reads are unsigned and carry the namespaced code.
	assert.Empty(t, node.lastLocalCmd.Sigs)
	assert.Contains(t, node.lastLocalCmd.Cmd, "(free.tellorflex.stake-amount)")
}

func TestModuleReadFailure(t *testing.T) {
	node := &pactNode{
		localResult: `{"reqKey": "k", "result": {"status": "failure", "error": {"message": "row not found: nobody"}}}`,
	}
	module := NewModule(newTestClient(t, node), "tellorflex")

	_, err := module.Read(context.Background(), "get-staker-info", "nobody")
	assert.ErrorContains(t, err, "row not found: nobody")
}

func TestTellorFlexStakeAmount(t *testing.T) {
	node := &pactNode{
		localResult: `{"reqKey": "k", "result": {"status": "success", "data": {"decimal": "250000000000000000000"}}}`,
	}
	flex := NewTellorFlex(newTestClient(t, node), unlockedKeyset(t), 1e-7, 150000)

	amount, err := flex.StakeAmount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 250e18, amount)
}

func TestTellorFlexGetStakerInfo(t *testing.T) {
	t.Run("unknown staker is unstaked", func(t *testing.T) {
		node := &pactNode{
			localResult: `{"reqKey": "k", "result": {"status": "failure", "error": {"message": "with-read: row not found: reporter"}}}`,
		}
		flex := NewTellorFlex(newTestClient(t, node), unlockedKeyset(t), 1e-7, 150000)

		info, err := flex.GetStakerInfo(context.Background(), "reporter")
		require.NoError(t, err)
		assert.False(t, info.IsStaked)
		assert.Zero(t, info.StakeBalance)
	})

	t.Run("staked reporter", func(t *testing.T) {
		node := &pactNode{
			localResult: `{"reqKey": "k", "result": {"status": "success", "data": {
				"start-date": {"int": 1686000000},
				"staked-balance": {"int": "250000000000000000000"},
				"locked-balance": {"int": 0},
				"reward-debt": {"int": 0},
				"reporter-last-timestamp": {"int": 1686343865},
				"reports-submitted": {"int": 3},
				"start-vote-count": {"int": 0},
				"start-vote-tally": {"int": 0},
				"is-staked": true
			}}}`,
		}
		flex := NewTellorFlex(newTestClient(t, node), unlockedKeyset(t), 1e-7, 150000)

		info, err := flex.GetStakerInfo(context.Background(), "reporter")
		require.NoError(t, err)
		assert.True(t, info.IsStaked)
		assert.Equal(t, 250e18, info.StakeBalance)
		assert.Equal(t, int64(3), info.ReportsCount)
	})
}

func TestTellorFlexGetNewValueCount(t *testing.T) {
	t.Run("existing query id", func(t *testing.T) {
		node := &pactNode{
			localResult: `{"reqKey": "k", "result": {"status": "success", "data": {"int": 7}}}`,
		}
		flex := NewTellorFlex(newTestClient(t, node), unlockedKeyset(t), 1e-7, 150000)

		count, err := flex.GetNewValueCountByQueryID(context.Background(), "someId")
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
	})

	t.Run("unreported query id counts zero", func(t *testing.T) {
		node := &pactNode{
			localResult: `{"reqKey": "k", "result": {"status": "failure", "error": {"message": "row not found: someId"}}}`,
		}
		flex := NewTellorFlex(newTestClient(t, node), unlockedKeyset(t), 1e-7, 150000)

		count, err := flex.GetNewValueCountByQueryID(context.Background(), "someId")
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestTellorFlexSubmitValue(t *testing.T) {
	node := &pactNode{
		sendKeys:   []string{"req1"},
		pollResult: `{"req1": {"reqKey": "req1", "result": {"status": "success"}}}`,
	}
	flex := NewTellorFlex(newTestClient(t, node), unlockedKeyset(t), 1e-7, 150000)

	receipt, err := flex.SubmitValue(context.Background(),
		"EWnklLBmDXxZh0jXcOHS7xoFwA6aWvle7NmnkvQIp_w",
		"OTYxNzgyMDAwMDAwMDAwMDAw", 0, "e1Nwb3RQcmljZTogW2tkYSx1c2RdfQ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, receipt)

	require.Len(t, node.lastSendReq.Cmds, 1)
	cmd := node.lastSendReq.Cmds[0].Cmd
	assert.Contains(t, cmd, "free.tellorflex.submit-value")
	assert.Contains(t, cmd, `(read-string "queryId")`)
	assert.Contains(t, cmd, `"staker":"reporter"`)
	assert.Contains(t, cmd, `"networkId":"testnet04"`)
	require.Len(t, node.lastSendReq.Cmds[0].Sigs, 1)
}

func TestTellorFlexSubmitValueFailedTxn(t *testing.T) {
	node := &pactNode{
		sendKeys:   []string{"req1"},
		pollResult: `{"req1": {"reqKey": "req1", "result": {"status": "failure"}}}`,
	}
	flex := NewTellorFlex(newTestClient(t, node), unlockedKeyset(t), 1e-7, 150000)

	_, err := flex.SubmitValue(context.Background(), "q", "v", 0, "qd")
	assert.ErrorContains(t, err, "submit-value txn failed")
}

func TestTellorFlexDepositStake(t *testing.T) {
	node := &pactNode{
		sendKeys:   []string{"req1"},
		pollResult: `{"req1": {"reqKey": "req1", "result": {"status": "success"}}}`,
	}
	flex := NewTellorFlex(newTestClient(t, node), unlockedKeyset(t), 1e-7, 150000)

	receipt, err := flex.DepositStake(context.Background(), 250e18)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, receipt)

	require.Len(t, node.lastSendReq.Cmds, 1)
	cmd := node.lastSendReq.Cmds[0].Cmd
	assert.Contains(t, cmd, "free.tellorflex.deposit-stake")
	// Grains rendered as an exact integer for read-integer.
	assert.Contains(t, cmd, `"amount":250000000000000000000`)
	// Capability list on the signer granting the transfer.
	assert.Contains(t, cmd, `free.f-TRB.TRANSFER`)
	assert.Contains(t, cmd, `coin.GAS`)
	assert.Contains(t, cmd, `free.tellorflex.STAKER`)
	assert.Contains(t, cmd, `"pred":"keys-all"`)
}

func TestTokenBalances(t *testing.T) {
	node := &pactNode{
		localResult: `{"reqKey": "k", "result": {"status": "success", "data": {"decimal": "99.5"}}}`,
	}
	token := NewToken(newTestClient(t, node))

	balance, err := token.Balance(context.Background(), "reporter")
	require.NoError(t, err)
	assert.Equal(t, 99.5, balance)
	assert.Contains(t, node.lastLocalCmd.Cmd, `(free.f-TRB.get-balance "reporter")`)

	native, err := token.NativeBalance(context.Background(), "reporter")
	require.NoError(t, err)
	assert.Equal(t, 99.5, native)
	assert.Contains(t, node.lastLocalCmd.Cmd, `(coin.get-balance "reporter")`)
}
