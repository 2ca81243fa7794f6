package reserve

const (
	// TaxWithholdingBps is withheld from the bond yield before pass-through.
	TaxWithholdingBps = 50

	feeFloorBps     = 25
	feeCeilingBps   = 150
	feeLowYield     = 450 * 100
	feeHighYield    = 1000 * 100
	feeSlope        = 2273
	feeIntercept    = 7727
	fixedPointScale = 10_000
)

// IssuerFee returns the bond issuer's fee in basis points for a bond
// yielding yieldBps. Yields below 4.5% pay the floor, yields at or above
// 10% pay the ceiling, and yields in between follow 0.2273*y - 0.7727.
func IssuerFee(yieldBps uint16) uint16 {
	y := uint32(yieldBps) * 100
	switch {
	case y < feeLowYield:
		return feeFloorBps
	case y >= feeHighYield:
		return feeCeilingBps
	}
	fee := y*feeSlope/fixedPointScale - feeIntercept
	return uint16(fee / 100)
}

// SovereignInterestRate derives a coin's interest rate from the bond it
// holds. The result is the bond rate net of the issuer fee and tax
// withholding, floored at zero. A holding smaller than one whole bond
// unit (10^decimals base units) earns nothing.
func SovereignInterestRate(bondRateBps int16, holding uint64, decimals uint8) int16 {
	if bondRateBps <= 0 {
		return 0
	}
	if holding < wholeUnit(decimals) {
		return 0
	}
	net := int32(bondRateBps) - int32(IssuerFee(uint16(bondRateBps))) - TaxWithholdingBps
	if net < 0 {
		return 0
	}
	return int16(net)
}

// wholeUnit returns 10^decimals, saturating at the largest power of ten
// representable in a uint64.
func wholeUnit(decimals uint8) uint64 {
	if decimals > 19 {
		decimals = 19
	}
	u := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		u *= 10
	}
	return u
}
