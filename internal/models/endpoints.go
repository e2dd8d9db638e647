package models

import "fmt"

// ChainwebAPIVersion is the Pact REST API version segment used in endpoint URLs.
const ChainwebAPIVersion = "0.0"

// ChainwebEndpoint describes a Pact API endpoint for a Chainweb network.
type ChainwebEndpoint struct {
	ChainID  int    `json:"chain_id" yaml:"chain_id"`
	Network  string `json:"network" yaml:"network"`
	Provider string `json:"provider" yaml:"provider"`
	URL      string `json:"url" yaml:"url"`
	Explorer string `json:"explorer" yaml:"explorer"`
}

// EndpointList holds the configured Chainweb endpoints.
type EndpointList struct {
	Endpoints []ChainwebEndpoint `json:"endpoints" yaml:"endpoints"`
}

// DefaultEndpoints returns the built-in mainnet and testnet04 endpoints.
// API reference: https://api.chainweb.com/openapi/pact.html
func DefaultEndpoints() EndpointList {
	return EndpointList{
		Endpoints: []ChainwebEndpoint{
			{
				ChainID:  1,
				Network:  "mainnet",
				Provider: "Kadena",
				URL: fmt.Sprintf(
					"https://api.chainweb.com/chainweb/%s/mainnet01/chain/1/pact/api/v1/",
					ChainwebAPIVersion),
				Explorer: "https://explorer.chainweb.com/mainnet",
			},
			{
				ChainID:  1,
				Network:  "testnet04",
				Provider: "Kadena",
				URL: fmt.Sprintf(
					"https://api.testnet.chainweb.com/chainweb/%s/testnet04/chain/1/pact/api/v1/",
					ChainwebAPIVersion),
				Explorer: "https://explorer.chainweb.com/testnet",
			},
		},
	}
}

// GetChainEndpoint returns the first endpoint for the given chain id.
func (l EndpointList) GetChainEndpoint(chainID int) (ChainwebEndpoint, bool) {
	for _, ep := range l.Endpoints {
		if ep.ChainID == chainID {
			return ep, true
		}
	}
	return ChainwebEndpoint{}, false
}

// Find returns all endpoints matching the given network and chain id.
// An empty network or a negative chain id matches everything.
func (l EndpointList) Find(network string, chainID int) []ChainwebEndpoint {
	var result []ChainwebEndpoint
	for _, ep := range l.Endpoints {
		if network != "" && network != ep.Network {
			continue
		}
		if chainID >= 0 && chainID != ep.ChainID {
			continue
		}
		result = append(result, ep)
	}
	return result
}
