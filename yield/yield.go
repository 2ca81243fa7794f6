// Package yield splits accrued yield between the protocol, the coin
// issuer and the coin holders.
package yield

import (
	"fmt"
	"math/bits"
)

// TotalBps is the sum every share set must reach.
const TotalBps = 10_000

// Recipient names a party entitled to a yield share.
type Recipient uint8

const (
	Protocol Recipient = iota
	Issuer
	Holders
)

func (r Recipient) String() string {
	switch r {
	case Protocol:
		return "protocol"
	case Issuer:
		return "issuer"
	case Holders:
		return "holders"
	default:
		return fmt.Sprintf("recipient(%d)", uint8(r))
	}
}

// Share is one recipient's portion in basis points.
type Share struct {
	Recipient Recipient
	Bps       uint16
}

// Distribution is one recipient's payout.
type Distribution struct {
	Recipient Recipient
	Amount    uint64
}

// Shares builds the canonical protocol/issuer/holders share list.
func Shares(protocol, issuer, holders uint16) []Share {
	return []Share{
		{Recipient: Protocol, Bps: protocol},
		{Recipient: Issuer, Bps: issuer},
		{Recipient: Holders, Bps: holders},
	}
}

// ValidateShares checks that the shares sum to exactly TotalBps.
func ValidateShares(shares []Share) error {
	var sum uint32
	for _, s := range shares {
		sum += uint32(s.Bps)
	}
	if sum != TotalBps {
		return fmt.Errorf("%w: got %d", ErrInvalidYieldDistribution, sum)
	}
	return nil
}

// Distribute splits amount across shares. Every recipient but the last
// receives floor(amount * bps / 10000); the last receives the remainder
// so the payouts always sum to amount.
func Distribute(amount uint64, shares []Share) ([]Distribution, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	if len(shares) == 0 {
		return nil, ErrNoShares
	}
	if err := ValidateShares(shares); err != nil {
		return nil, err
	}

	out := make([]Distribution, len(shares))
	var distributed uint64
	for i, s := range shares {
		out[i].Recipient = s.Recipient
		if i == len(shares)-1 {
			out[i].Amount = amount - distributed
			continue
		}
		hi, lo := bits.Mul64(amount, uint64(s.Bps))
		q, _ := bits.Div64(hi, lo, TotalBps)
		out[i].Amount = q
		distributed += q
	}
	return out, nil
}
