package protocol

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/dsbftsim/simulator/dsbft"
)

// defaultPCorrupt and defaultPInject are spec §6's adversary-tuning
// defaults. DefaultProbability is the sentinel a caller leaves in PCorrupt
// or PInject to mean "use the default"; a real probability is always in
// [0, 1], so a negative value is unambiguous and an explicit 0 is honored
// as a genuine "never" rather than silently promoted to the default.
const (
	defaultPCorrupt = 0.5
	defaultPInject  = 0.5

	DefaultProbability = -1
)

// defaultEquivocationPool, defaultCorruptionPool and defaultInjectionPool
// are the token sets the reference scenario (market_sim's consensus
// agents) draws from.
var (
	defaultEquivocationPool = []string{"sell", "hold", "attack", "corrupt"}
	defaultCorruptionPool   = []string{"fake", "noise", "byzantine", "evil"}
	defaultInjectionPool    = []string{"sell", "panic", "crash", "exploit"}
)

// Config holds every knob enumerated in spec §6.
type Config struct {
	TotalParties int
	F            int
	ByzantineIDs []dsbft.PartyID
	SenderID     dsbft.PartyID
	InitialValue string

	PCorrupt         float64
	PInject          float64
	EquivocationPool []string
	CorruptionPool   []string
	InjectionPool    []string

	Seed int64
}

// withDefaults returns a copy of c with unset optional knobs filled in.
func (c Config) withDefaults() Config {
	out := c
	if out.PCorrupt == DefaultProbability {
		out.PCorrupt = defaultPCorrupt
	}
	if out.PInject == DefaultProbability {
		out.PInject = defaultPInject
	}
	if len(out.EquivocationPool) == 0 {
		out.EquivocationPool = defaultEquivocationPool
	}
	if len(out.CorruptionPool) == 0 {
		out.CorruptionPool = defaultCorruptionPool
	}
	if len(out.InjectionPool) == 0 {
		out.InjectionPool = defaultInjectionPool
	}
	return out
}

// Validate reports every configuration error at once (spec §7: "Reported
// once, at harness entry, before any round runs"), rather than stopping at
// the first violation.
func (c Config) Validate() *multierror.Error {
	var result *multierror.Error

	if c.TotalParties < 2 {
		result = multierror.Append(result, fmt.Errorf("total_parties must be >= 2, got %d", c.TotalParties))
	}
	if c.F < 0 {
		result = multierror.Append(result, fmt.Errorf("f must be >= 0, got %d", c.F))
	}
	if c.F >= 0 && c.TotalParties >= 0 && c.TotalParties < c.F+2 {
		result = multierror.Append(result, fmt.Errorf("total_parties (%d) must be >= f+2 (%d)", c.TotalParties, c.F+2))
	}
	if c.SenderID < 0 || int(c.SenderID) >= c.TotalParties {
		result = multierror.Append(result, fmt.Errorf("sender_id %d out of range [0, %d)", c.SenderID, c.TotalParties))
	}
	if len(c.ByzantineIDs) > c.F {
		result = multierror.Append(result, fmt.Errorf("byzantine_ids has %d members, exceeds f=%d", len(c.ByzantineIDs), c.F))
	}
	if !dsbft.PartyIDs(c.ByzantineIDs).Distinct() {
		result = multierror.Append(result, fmt.Errorf("byzantine_ids contains duplicate identifiers: %v", c.ByzantineIDs))
	}
	var outOfRange []dsbft.PartyID
	for _, id := range c.ByzantineIDs {
		if id < 0 || int(id) >= c.TotalParties {
			outOfRange = append(outOfRange, id)
		}
	}
	if len(outOfRange) > 0 {
		cause := fmt.Errorf("byzantine id(s) out of range [0, %d)", c.TotalParties)
		result = multierror.Append(result, dsbft.NewError(cause, -1, nil, outOfRange...))
	}
	if c.InitialValue == "" {
		result = multierror.Append(result, fmt.Errorf("initial_value must be non-empty"))
	}
	if p := c.PCorrupt; p != 0 && p != DefaultProbability && (p < 0 || p > 1) {
		result = multierror.Append(result, fmt.Errorf("p_corrupt must be in [0,1], got %v", p))
	}
	if p := c.PInject; p != 0 && p != DefaultProbability && (p < 0 || p > 1) {
		result = multierror.Append(result, fmt.Errorf("p_inject must be in [0,1], got %v", p))
	}

	return result
}
