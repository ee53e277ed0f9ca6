package protocol

import (
	"github.com/dsbftsim/simulator/dsbft"
)

// Result is the harness's output: per-party decisions and extracted sets,
// plus the analysis view spec §4.6 and §6 call for.
type Result struct {
	Decisions    map[dsbft.PartyID]string
	Extracted    map[dsbft.PartyID][]string
	ByzantineIDs map[dsbft.PartyID]struct{}
	Agreement    bool
}

// HonestDecisions returns the decisions of every party not in ByzantineIDs.
func (r Result) HonestDecisions() map[dsbft.PartyID]string {
	out := make(map[dsbft.PartyID]string)
	for id, decision := range r.Decisions {
		if _, byzantine := r.ByzantineIDs[id]; !byzantine {
			out[id] = decision
		}
	}
	return out
}

// ByzantineDecisions returns the decisions of every party in ByzantineIDs.
// Byzantine decisions carry no correctness meaning (spec §4.3); this exists
// purely so callers can display them alongside the honest ones.
func (r Result) ByzantineDecisions() map[dsbft.PartyID]string {
	out := make(map[dsbft.PartyID]string)
	for id := range r.ByzantineIDs {
		if decision, ok := r.Decisions[id]; ok {
			out[id] = decision
		}
	}
	return out
}

// DistinctDecisions returns the distinct multiset of decisions across every
// party (spec §4.6: "distinct decision multiset").
func (r Result) DistinctDecisions() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, decision := range r.Decisions {
		if _, ok := seen[decision]; !ok {
			seen[decision] = struct{}{}
			out = append(out, decision)
		}
	}
	return out
}

// Harness is the single entry point spec §4.6 describes: given a Config, it
// constructs parties, drives the scheduler, and collects the Result.
type Harness struct {
	cfg Config
}

// NewHarness validates cfg and returns a Harness, or an error aggregating
// every configuration violation (spec §7: reported once, before any round
// runs).
func NewHarness(cfg Config) (*Harness, error) {
	if err := cfg.Validate(); err.ErrorOrNil() != nil {
		dsbft.Logger.Errorf("configuration rejected: %s", err)
		return nil, err
	}
	return &Harness{cfg: cfg}, nil
}

// Run executes the protocol to completion and returns the Result.
func (h *Harness) Run() Result {
	scheduler := NewScheduler(h.cfg)
	parties := scheduler.Run()

	byzantineIDs := make(map[dsbft.PartyID]struct{}, len(h.cfg.ByzantineIDs))
	for _, id := range h.cfg.ByzantineIDs {
		byzantineIDs[id] = struct{}{}
	}

	decisions := make(map[dsbft.PartyID]string, len(parties))
	extracted := make(map[dsbft.PartyID][]string, len(parties))
	for _, party := range parties {
		id := party.ID()
		decisions[id] = party.Decide()
		extracted[id] = party.Snapshot()
	}

	result := Result{
		Decisions:    decisions,
		Extracted:    extracted,
		ByzantineIDs: byzantineIDs,
		Agreement:    agrees(decisions, byzantineIDs),
	}

	dsbft.Logger.Infof("execution complete: agreement=%v distinct decisions=%v", result.Agreement, result.DistinctDecisions())
	return result
}

// agrees reports whether every honest party in decisions decided the same
// value (spec §4.6, §8 property 3).
func agrees(decisions map[dsbft.PartyID]string, byzantineIDs map[dsbft.PartyID]struct{}) bool {
	var value string
	seen := false
	for id, decision := range decisions {
		if _, byzantine := byzantineIDs[id]; byzantine {
			continue
		}
		if !seen {
			value = decision
			seen = true
			continue
		}
		if decision != value {
			return false
		}
	}
	return true
}
