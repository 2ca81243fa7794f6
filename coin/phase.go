package coin

import "fmt"

// Phase is a coin's position in the provisioning lifecycle.
type Phase uint8

const (
	// PhaseDraft: record created, nothing provisioned.
	PhaseDraft Phase = iota
	// PhaseMintConfigured: plain or interest-bearing mint assigned.
	PhaseMintConfigured
	// PhaseAccountsLinked: fiat reserve and bond holding both attached.
	PhaseAccountsLinked
	// PhaseFinalized: metadata published and factory counters bumped.
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseDraft:
		return "draft"
	case PhaseMintConfigured:
		return "mint-configured"
	case PhaseAccountsLinked:
		return "accounts-linked"
	case PhaseFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}
