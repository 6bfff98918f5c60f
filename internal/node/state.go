package node

import (
	"maelstrom-node/internal/gossipset"
	"maelstrom-node/internal/protocol"
)

// PendingSend is one outbox entry: a broadcast fan-out message awaiting a
// broadcast_ok acknowledgement from dest (spec.md §3 "outbox").
type PendingSend struct {
	Dest string
	Body protocol.BroadcastBody
}

// State is the node's entire mutable world (spec.md §3). It is confined to
// the dispatcher goroutine (see Node.Run) and carries no lock: ownership is
// enforced by construction, not by a mutex.
type State struct {
	ID       string
	Peers    []string
	Topology map[string][]string
	Store    *gossipset.Set
	Outbox   map[string][]PendingSend

	msgID uint64
}

// NewState returns a zero-value node state: uninitialized id, no peers, an
// empty store, no topology, no outbox.
func NewState() *State {
	return &State{
		Topology: make(map[string][]string),
		Store:    gossipset.New(),
		Outbox:   make(map[string][]PendingSend),
	}
}

// Initialized reports whether init has already been processed.
func (s *State) Initialized() bool {
	return s.ID != ""
}

// SetIdentity assigns id and peers exactly once; later calls are no-ops, so
// a stray second "init" never clobbers an established identity (spec.md §3
// invariant: "The id field is set exactly once").
func (s *State) SetIdentity(id string, peers []string) {
	if s.Initialized() {
		return
	}
	s.ID = id
	s.Peers = peers
}

// NextMsgID returns a fresh, strictly increasing message id (spec.md §3
// invariant P4).
func (s *State) NextMsgID() uint64 {
	id := s.msgID
	s.msgID++
	return id
}

// SetTopology replaces the topology map wholesale (spec.md P5: no merge
// semantics).
func (s *State) SetTopology(t map[string][]string) {
	s.Topology = t
}

// Neighbours returns this node's direct neighbours minus excluding, used by
// the broadcast handler to avoid immediately echoing a value back to the
// peer it was just learned from (spec.md §4.1 "broadcast").
func (s *State) Neighbours(excluding string) []string {
	all := s.Topology[s.ID]
	if len(all) == 0 {
		return nil
	}
	out := make([]string, 0, len(all))
	for _, n := range all {
		if n != excluding {
			out = append(out, n)
		}
	}
	return out
}

// EnqueueOutbox records a fan-out message as pending delivery to dest.
func (s *State) EnqueueOutbox(dest string, body protocol.BroadcastBody) {
	s.Outbox[dest] = append(s.Outbox[dest], PendingSend{Dest: dest, Body: body})
}

// AckOutbox removes the outbox entry addressed to peer whose body msg_id
// equals inReplyTo (spec.md §4.1 "broadcast_ok"). A missing entry is
// tolerated: the ack may be late, or a replay may have already been
// acknowledged.
func (s *State) AckOutbox(peer string, inReplyTo uint64) {
	pending, ok := s.Outbox[peer]
	if !ok {
		return
	}
	kept := pending[:0]
	for _, p := range pending {
		if p.Body.MsgID != inReplyTo {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		delete(s.Outbox, peer)
		return
	}
	s.Outbox[peer] = kept
}
