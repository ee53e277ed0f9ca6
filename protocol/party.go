package protocol

import "github.com/dsbftsim/simulator/dsbft"

// Party is the per-participant state machine of spec §3-§4.2. It owns its
// extracted set exclusively: the Scheduler mutates party state only by
// calling Receive with an inbound bag, never by touching extracted
// directly.
type Party struct {
	id       dsbft.PartyID
	f        int
	senderID dsbft.PartyID
	behavior Behavior

	extracted map[string]struct{}
}

// NewParty constructs a party. senderID is needed locally because the
// validity predicate (spec §4.1) is defined relative to the designated
// sender, and a party must be able to evaluate it without consulting the
// scheduler on every message.
func NewParty(id dsbft.PartyID, f int, senderID dsbft.PartyID, behavior Behavior) *Party {
	return &Party{
		id:        id,
		f:         f,
		senderID:  senderID,
		behavior:  behavior,
		extracted: make(map[string]struct{}),
	}
}

func (p *Party) ID() dsbft.PartyID { return p.id }

func (p *Party) IsByzantine() bool { return p.behavior.IsByzantine() }

// Receive implements spec §4.2's single-pass receive/relay rule over one
// round's inbound bag, in arrival order. Messages that fail the validity
// predicate are discarded silently; a payload already in extracted is never
// relayed twice (the O(n*f) message-complexity bound); a new payload is
// added to extracted and, unless the party's own id is already in the
// chain, relayed with the chain extended by its own id.
//
// This is the one-pass semantics spec §9 calls out by name: the round-1
// message is never processed twice to produce a display side effect, the
// way the reference implementation's node.receive did.
func (p *Party) Receive(round int, inbound []dsbft.Message) []dsbft.Message {
	var outbound []dsbft.Message

	for _, msg := range inbound {
		if !msg.Valid(p.senderID, p.f) {
			dsbft.Logger.Debugf("round %d: party %s discarded invalid message %s", round, p.id, msg)
			continue
		}

		if _, already := p.extracted[msg.Payload]; already {
			continue
		}

		p.extracted[msg.Payload] = struct{}{}
		dsbft.Logger.Debugf("round %d: party %s extracted %q via %v", round, p.id, msg.Payload, msg.Signers)

		if !msg.SignedBy(p.id) {
			outbound = append(outbound, msg.Signed(p.id))
		}
	}

	return outbound
}

// Decide implements the Dolev-Strong decision rule of spec §4.5.
func (p *Party) Decide() string {
	if len(p.extracted) == 1 {
		for payload := range p.extracted {
			return payload
		}
	}
	return "0"
}

// Snapshot returns an immutable copy of the party's extracted payloads, for
// the harness's analysis view. It never exposes the live map so callers
// cannot mutate party state from outside the round loop.
func (p *Party) Snapshot() []string {
	out := make([]string, 0, len(p.extracted))
	for payload := range p.extracted {
		out = append(out, payload)
	}
	return out
}
