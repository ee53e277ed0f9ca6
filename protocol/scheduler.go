package protocol

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/dsbftsim/simulator/dsbft"
	"github.com/dsbftsim/simulator/protocol/internal/rng"
)

// invariant panics when cond is false. It guards conditions spec §7 calls
// "internal invariant violations... a programmer bug, not a runtime
// condition" -- these must fail loudly rather than be absorbed like
// protocol-level anomalies are. round and victim are carried on the panic
// value as a *dsbft.Error so a recovering caller (or a crash report) knows
// which phase and party the violation concerns, not just the bare message.
func invariant(cond bool, round int, victim *dsbft.PartyID, msg string) {
	if !cond {
		panic(dsbft.NewError(errors.Errorf("dsbft: invariant violated: %s", msg), round, victim))
	}
}

// Scheduler drives f+2 rounds in strict lockstep (spec §4.4, §5). It is the
// sole owner of the round-scoped inbound bags; parties never see another
// party's state, only the bag the scheduler hands them.
type Scheduler struct {
	cfg       Config
	order     []dsbft.PartyID
	parties   map[dsbft.PartyID]*Party
	byzantine map[dsbft.PartyID]struct{}
	adversary *Adversary
	stream    *rng.Stream
}

// NewScheduler builds the party set and adversary for cfg. cfg must already
// be valid (Harness is responsible for calling Config.Validate first).
func NewScheduler(cfg Config) *Scheduler {
	cfg = cfg.withDefaults()

	byzantine := make(map[dsbft.PartyID]struct{}, len(cfg.ByzantineIDs))
	for _, id := range cfg.ByzantineIDs {
		byzantine[id] = struct{}{}
	}

	order := make([]dsbft.PartyID, cfg.TotalParties)
	parties := make(map[dsbft.PartyID]*Party, cfg.TotalParties)
	for i := 0; i < cfg.TotalParties; i++ {
		id := dsbft.PartyID(i)
		order[i] = id
		behavior := Honest
		if _, ok := byzantine[id]; ok {
			behavior = Byzantine
		}
		parties[id] = NewParty(id, cfg.F, cfg.SenderID, behavior)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	return &Scheduler{
		cfg:       cfg,
		order:     order,
		parties:   parties,
		byzantine: byzantine,
		adversary: NewAdversary(cfg),
		stream:    rng.New(cfg.Seed),
	}
}

// Run drives the full execution: round 0's sender broadcast, rounds 1..f+1
// of relay, and returns the parties so the caller can read decisions and
// extracted sets. Parties are returned keyed by id for the harness's
// analysis view.
func (s *Scheduler) Run() map[dsbft.PartyID]*Party {
	pending := s.broadcastRound()

	for round := 1; round <= s.cfg.F+1; round++ {
		invariant(round <= s.cfg.F+1, round, nil, "round index exceeded f+1")
		pending = s.relayRound(round, pending)
	}

	dsbft.Logger.Infof("decision phase: all %d parties deciding", s.cfg.TotalParties)
	for _, id := range s.order {
		decision := s.parties[id].Decide()
		dsbft.Logger.Infof("party %s decided %q", id, decision)
	}

	return s.parties
}

// broadcastRound implements spec §4.4's round 0: the only round in which the
// sender is an active participant. An honest sender delivers the identical
// message to every other party; a Byzantine sender equivocates, drawing an
// independent payload per recipient.
func (s *Scheduler) broadcastRound() map[dsbft.PartyID][]dsbft.Message {
	pending := make(map[dsbft.PartyID][]dsbft.Message, len(s.order))

	sender := s.cfg.SenderID
	_, senderIsByzantine := s.byzantine[sender]

	if senderIsByzantine {
		dsbft.Logger.Infof("round 0: byzantine sender %s equivocating", sender)
		for _, id := range s.order {
			if id == sender {
				continue
			}
			stream := s.stream.For(0, id, "equivocate")
			payload := s.adversary.Equivocate(stream)
			dsbft.Logger.Debugf("round 0: sender tells %s the value %q", id, payload)
			pending[id] = []dsbft.Message{{Payload: payload, Signers: []dsbft.PartyID{sender}}}
		}
		return pending
	}

	dsbft.Logger.Infof("round 0: honest sender %s broadcasting %q", sender, s.cfg.InitialValue)
	msg := dsbft.New(s.cfg.InitialValue, sender)
	// The sender never receives its own broadcast, so it extracts the value
	// here; the chain already carries its id, so nothing is relayed.
	s.parties[sender].Receive(0, []dsbft.Message{msg})
	for _, id := range s.order {
		if id == sender {
			continue
		}
		pending[id] = []dsbft.Message{msg}
	}
	return pending
}

// relayRound implements spec §4.4's rounds 1..f+1: every party is polled in
// ascending id order, whether or not its inbound bag is empty (spec §9: "the
// spec requires every party be polled every round"). A Byzantine party's
// relayed output is corrupted and may be joined by an injected message
// before being placed into the next round's bags.
func (s *Scheduler) relayRound(round int, pending map[dsbft.PartyID][]dsbft.Message) map[dsbft.PartyID][]dsbft.Message {
	next := make(map[dsbft.PartyID][]dsbft.Message, len(s.order))

	for _, id := range s.order {
		party := s.parties[id]
		before := len(party.extracted)

		outbound := party.Receive(round, pending[id])

		invariant(len(party.extracted) >= before, round, &id, "extraction set shrank")
		for _, msg := range outbound {
			invariant(len(msg.Signers) <= s.cfg.F+2, round, &id, "relayed chain exceeds f+2")
		}

		if _, isByzantine := s.byzantine[id]; isByzantine {
			outbound = s.applyAdversaryHooks(round, id, outbound)
		}

		for _, other := range s.order {
			if other == id {
				continue
			}
			next[other] = append(next[other], outbound...)
		}
	}

	return next
}

// applyAdversaryHooks implements spec §4.3's corrupt-relay and injection
// hooks, run after a Byzantine party's own honest-bookkeeping relay.
func (s *Scheduler) applyAdversaryHooks(round int, id dsbft.PartyID, outbound []dsbft.Message) []dsbft.Message {
	corruptStream := s.stream.For(round, id, "corrupt")
	for i, msg := range outbound {
		corrupted := s.adversary.CorruptRelay(msg, corruptStream)
		if corrupted.Payload != msg.Payload {
			dsbft.Logger.Debugf("round %d: byzantine party %s corrupted relay %s -> %s", round, id, msg, corrupted)
		}
		outbound[i] = corrupted
	}

	injectStream := s.stream.For(round, id, "inject")
	if injected, ok := s.adversary.MaybeInject(injectStream, s.cfg.SenderID, id); ok {
		dsbft.Logger.Debugf("round %d: byzantine party %s injected %s", round, id, injected)
		outbound = append(outbound, injected)
	}

	return outbound
}
