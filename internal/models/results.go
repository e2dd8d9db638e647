package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PactError is the error object inside a failed command result.
type PactError struct {
	Message string `json:"message"`
}

// PactResult is the result section of a command result.
type PactResult struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  *PactError      `json:"error,omitempty"`
}

// CommandResult is the outcome of a single command, as returned by /local
// and /poll.
type CommandResult struct {
	ReqKey string     `json:"reqKey"`
	Result PactResult `json:"result"`
}

// Command result statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// PollResponse maps request keys to their command results. Pending
// transactions are absent from the map.
type PollResponse map[string]CommandResult

// PactInt decodes Pact's `{"int": n}` integer representation, where n may
// arrive as a JSON number or a string. Values are held as float64 because
// token amounts in 1e18 grains exceed int64.
type PactInt struct {
	Value float64
}

// Int64 truncates the value. Only safe for counters and timestamps.
func (p PactInt) Int64() int64 {
	return int64(p.Value)
}

func (p *PactInt) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Int json.RawMessage `json:"int"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Int != nil {
		data = wrapped.Int
	}
	raw := string(data)
	if len(raw) > 1 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid pact integer %s", raw)
		}
		raw = s
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid pact integer %s: %w", raw, err)
	}
	p.Value = v
	return nil
}

// PactDecimal decodes Pact's `{"decimal": "1.5"}` representation as well as
// plain JSON numbers.
type PactDecimal struct {
	Value float64
}

func (p *PactDecimal) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Decimal json.RawMessage `json:"decimal"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Decimal != nil {
		data = wrapped.Decimal
	}
	raw := string(data)
	if len(raw) > 1 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid pact decimal %s", raw)
		}
		raw = s
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid pact decimal %s: %w", raw, err)
	}
	p.Value = v
	return nil
}

// StakerInfo is the reporter's staking state in the tellorflex module.
// Balances are in 1e18 grains.
type StakerInfo struct {
	StartDate      int64
	StakeBalance   float64
	LockedBalance  float64
	RewardDebt     float64
	LastReport     int64
	ReportsCount   int64
	StartVoteCount int64
	StartVoteTally int64
	IsStaked       bool
}

// rawStakerInfo mirrors the get-staker-info row layout.
type rawStakerInfo struct {
	StartDate      PactInt `json:"start-date"`
	StakedBalance  PactInt `json:"staked-balance"`
	LockedBalance  PactInt `json:"locked-balance"`
	RewardDebt     PactInt `json:"reward-debt"`
	LastTimestamp  PactInt `json:"reporter-last-timestamp"`
	ReportsCount   PactInt `json:"reports-submitted"`
	StartVoteCount PactInt `json:"start-vote-count"`
	StartVoteTally PactInt `json:"start-vote-tally"`
	IsStaked       bool    `json:"is-staked"`
}

// ParseStakerInfo decodes a get-staker-info response. A nil payload yields
// the zero value (an unstaked reporter).
func ParseStakerInfo(data json.RawMessage) (*StakerInfo, error) {
	if data == nil {
		return &StakerInfo{}, nil
	}
	var raw rawStakerInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing staker info: %w", err)
	}
	return &StakerInfo{
		StartDate:      raw.StartDate.Int64(),
		StakeBalance:   raw.StakedBalance.Value,
		LockedBalance:  raw.LockedBalance.Value,
		RewardDebt:     raw.RewardDebt.Value,
		LastReport:     raw.LastTimestamp.Int64(),
		ReportsCount:   raw.ReportsCount.Int64(),
		StartVoteCount: raw.StartVoteCount.Int64(),
		StartVoteTally: raw.StartVoteTally.Int64(),
		IsStaked:       raw.IsStaked,
	}, nil
}
