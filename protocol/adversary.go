package protocol

import (
	"math/rand"

	"github.com/dsbftsim/simulator/dsbft"
)

// Adversary implements the three concrete behaviors spec §4.3 enumerates.
// Every coin flip it draws comes from a *rand.Rand handed to it by the
// caller (derived from the harness's seeded rng.Stream), never from a
// package-global source, so that a whole execution is reproducible given a
// seed (spec §9's "explicit seeded stream" fix).
type Adversary struct {
	equivocationPool []string
	corruptionPool   []string
	injectionPool    []string
	pCorrupt         float64
	pInject          float64
}

// NewAdversary builds an Adversary from the (already-defaulted) tuning
// knobs in a Config.
func NewAdversary(cfg Config) *Adversary {
	cfg = cfg.withDefaults()
	return &Adversary{
		equivocationPool: cfg.EquivocationPool,
		corruptionPool:   cfg.CorruptionPool,
		injectionPool:    cfg.InjectionPool,
		pCorrupt:         cfg.PCorrupt,
		pInject:          cfg.PInject,
	}
}

// Equivocate picks, for one recipient, a payload from the equivocation pool
// rather than the value the sender was asked to propose (spec §4.3:
// "Equivocation at round 0").
func (a *Adversary) Equivocate(r *rand.Rand) string {
	return a.equivocationPool[r.Intn(len(a.equivocationPool))]
}

// CorruptRelay implements spec §4.3's corrupt-relay hook: with probability
// pCorrupt the payload is replaced while the existing signer chain -- the
// part that makes the message look authentic -- is preserved untouched.
func (a *Adversary) CorruptRelay(msg dsbft.Message, r *rand.Rand) dsbft.Message {
	if r.Float64() >= a.pCorrupt {
		return msg
	}
	return msg.WithPayload(a.corruptionPool[r.Intn(len(a.corruptionPool))])
}

// MaybeInject implements spec §4.3's injection hook: with probability
// pInject, fabricate a message with a two-element chain [sender, self] and
// an adversary-chosen payload. The second return value is false when no
// injection occurred this round.
func (a *Adversary) MaybeInject(r *rand.Rand, senderID, self dsbft.PartyID) (dsbft.Message, bool) {
	if r.Float64() >= a.pInject {
		return dsbft.Message{}, false
	}
	payload := a.injectionPool[r.Intn(len(a.injectionPool))]
	return dsbft.Message{Payload: payload, Signers: []dsbft.PartyID{senderID, self}}, true
}
