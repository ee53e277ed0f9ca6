// Package rng derives deterministic, independent pseudo-random streams from
// a single master seed. The adversary's coin flips (equivocation choice,
// corrupt-relay roll, injection roll) must be reproducible given a seed
// (spec §5, §8 property 7) without depending on the order in which they are
// drawn across parties and rounds. Hashing the call coordinates into a
// sub-seed gives each (round, party, purpose) triple its own stream instead
// of threading a single *rand.Rand through the scheduler and hoping call
// order never changes.
package rng

import (
	"encoding/binary"
	"fmt"
	"math/rand"

	"golang.org/x/crypto/blake2b"

	"github.com/dsbftsim/simulator/dsbft"
)

// Stream derives seeded *rand.Rand instances from a master seed.
type Stream struct {
	seed int64
}

// New returns a Stream rooted at the given master seed.
func New(seed int64) *Stream {
	return &Stream{seed: seed}
}

// For returns a *rand.Rand deterministically derived from the stream's
// master seed and the given coordinates. The same (seed, round, party,
// purpose) always yields the same sequence of draws.
func (s *Stream) For(round int, party dsbft.PartyID, purpose string) *rand.Rand {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(s.seed))
	payload := fmt.Sprintf("%s|%d|%s|%s", buf, round, party.String(), purpose)

	digest := blake2b.Sum256([]byte(payload))
	subSeed := int64(binary.LittleEndian.Uint64(digest[:8]))
	return rand.New(rand.NewSource(subSeed))
}
