package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tellor-io/telliot-kadena/internal/chainweb"
	"github.com/tellor-io/telliot-kadena/internal/models"
	"github.com/tellor-io/telliot-kadena/internal/pact"
)

// Namespaces maps a network id to the namespace its Tellor modules are
// deployed under.
var Namespaces = map[string]string{
	"testnet04": "free",
	"mainnet":   "n_61b7d03ff34ca7e599e3551df8dcd4a3c1bf7524",
}

// Gas limit for read-only local commands.
const readGasLimit = 600

// receiptRetries is the number of poll attempts after a send.
const receiptRetries = 4

// Module reads from a Pact module deployed on Chainweb.
type Module struct {
	Name string

	client    *chainweb.Client
	namespace string
	chainID   string
	networkID string
}

// NewModule binds a module name to a Chainweb client. The namespace is
// derived from the client's network.
func NewModule(client *chainweb.Client, name string) *Module {
	endpoint := client.Endpoint()
	return &Module{
		Name:      name,
		client:    client,
		namespace: Namespaces[endpoint.Network],
		chainID:   strconv.Itoa(endpoint.ChainID),
		networkID: endpoint.Network,
	}
}

// Namespace returns the module's deployment namespace.
func (m *Module) Namespace() string {
	return m.namespace
}

// Read calls a read-only function of the module via /local.
func (m *Module) Read(ctx context.Context, function string, args ...interface{}) (json.RawMessage, error) {
	qualified := fmt.Sprintf("%s.%s.%s", m.namespace, m.Name, function)
	return m.readCode(ctx, pact.AssembleCode(qualified, args...))
}

// ReadAny calls a read-only function of an arbitrary fully-qualified module
// (e.g. "coin").
func (m *Module) ReadAny(ctx context.Context, qualifiedModule, function string, args ...interface{}) (json.RawMessage, error) {
	return m.readCode(ctx, pact.AssembleCode(qualifiedModule+"."+function, args...))
}

func (m *Module) readCode(ctx context.Context, code string) (json.RawMessage, error) {
	cmd, err := pact.PrepareExecCmd(pact.ExecCmdParams{
		Code: code,
		Meta: pact.MkMeta("", m.chainID, 0, readGasLimit),
	})
	if err != nil {
		return nil, err
	}

	result, err := m.client.Local(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return parseResult(&result.Result)
}

// send submits a signed exec command and waits for its receipt status.
func (m *Module) send(ctx context.Context, req models.SendRequest) (string, error) {
	response, err := m.client.Send(ctx, req)
	if err != nil {
		return "", err
	}
	return m.client.PollReceipt(ctx, response.RequestKeys[0], receiptRetries)
}

func parseResult(result *models.PactResult) (json.RawMessage, error) {
	if result.Status == models.StatusSuccess {
		return result.Data, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("error reading from chainweb: %s", result.Error.Message)
	}
	return nil, fmt.Errorf("error reading from chainweb: status %q", result.Status)
}
