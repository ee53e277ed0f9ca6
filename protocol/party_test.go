package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dsbftsim/simulator/dsbft"
)

func TestPartyReceiveExtractsAndRelaysOnce(t *testing.T) {
	sender := dsbft.PartyID(0)
	p := NewParty(1, 2, sender, Honest)

	msg := dsbft.New("buy", sender)

	assert.Equal(t, dsbft.PartyID(1), p.ID())
	assert.False(t, p.IsByzantine())

	outbound := p.Receive(1, []dsbft.Message{msg})
	assert.Len(t, outbound, 1)
	assert.Equal(t, []dsbft.PartyID{0, 1}, outbound[0].Signers)
	assert.Equal(t, []string{"buy"}, p.Snapshot())

	// the same payload arriving again must not be relayed a second time.
	outbound = p.Receive(2, []dsbft.Message{msg})
	assert.Empty(t, outbound)
	assert.Equal(t, []string{"buy"}, p.Snapshot())
}

func TestPartyReceiveDoesNotRelayItsOwnChain(t *testing.T) {
	sender := dsbft.PartyID(0)
	p := NewParty(1, 2, sender, Honest)

	// the message already carries party 1's signature -- it must extract
	// but not relay again.
	msg := dsbft.New("buy", sender).Signed(1)

	outbound := p.Receive(1, []dsbft.Message{msg})
	assert.Empty(t, outbound)
	assert.Equal(t, []string{"buy"}, p.Snapshot())
}

func TestPartyReceiveDiscardsMalformedMessages(t *testing.T) {
	sender := dsbft.PartyID(0)
	p := NewParty(1, 1, sender, Honest)

	cases := map[string]dsbft.Message{
		"duplicate signers":     {Payload: "buy", Signers: []dsbft.PartyID{0, 2, 2}},
		"wrong root":            {Payload: "buy", Signers: []dsbft.PartyID{2, 3}},
		"chain longer than f+2": {Payload: "buy", Signers: []dsbft.PartyID{0, 2, 3, 4}},
		"empty chain":           {Payload: "buy"},
	}

	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			q := NewParty(1, 1, sender, Honest)
			outbound := q.Receive(1, []dsbft.Message{msg})
			assert.Empty(t, outbound)
			assert.Empty(t, q.Snapshot())
		})
	}
	_ = p
}

func TestPartyDecide(t *testing.T) {
	sender := dsbft.PartyID(0)

	t.Run("single extracted payload", func(t *testing.T) {
		p := NewParty(1, 2, sender, Honest)
		p.Receive(1, []dsbft.Message{dsbft.New("buy", sender)})
		assert.Equal(t, "buy", p.Decide())
	})

	t.Run("no extracted payload defaults to 0", func(t *testing.T) {
		p := NewParty(1, 2, sender, Honest)
		assert.Equal(t, "0", p.Decide())
	})

	t.Run("conflicting payloads default to 0", func(t *testing.T) {
		p := NewParty(1, 2, sender, Honest)
		p.Receive(1, []dsbft.Message{dsbft.New("buy", sender)})
		p.Receive(1, []dsbft.Message{{Payload: "sell", Signers: []dsbft.PartyID{0, 3}}})
		assert.Equal(t, "0", p.Decide())
	})
}
