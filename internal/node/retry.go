package node

import (
	"maelstrom-node/internal/protocol"
	"maelstrom-node/internal/retry"
)

// tick runs both halves of the retry/anti-entropy engine (spec.md §4.2) on
// the dispatcher goroutine, invoked every retryEvery inbound messages.
func (n *Node) tick() {
	n.replayOutbox()
	n.syncRound()
}

// replayOutbox re-emits every unacknowledged fan-out. The receiving peer's
// own broadcast handler deduplicates via store membership, so replays are
// always safe to send again.
func (n *Node) replayOutbox() {
	for peer, pending := range n.state.Outbox {
		for _, p := range pending {
			n.Send(protocol.OutEnvelope{Src: n.state.ID, Dest: peer, Body: p.Body})
		}
	}
}

// syncRound picks syncFanout random peers and sends each the node's full
// current store, bounding divergence caused by topology loss (spec.md §4.2
// "Random-peer sync").
func (n *Node) syncRound() {
	if !n.state.Initialized() {
		return
	}
	peers := retry.SelectPeers(n.state.Peers, n.state.ID, n.syncFanout, n.rng)
	if len(peers) == 0 {
		return
	}

	values := n.state.Store.Snapshot()
	for _, p := range peers {
		body := protocol.SyncBody{
			Type:     "sync",
			MsgID:    n.NextMsgID(),
			Messages: values,
		}
		n.Send(protocol.OutEnvelope{Src: n.state.ID, Dest: p, Body: body})
	}
}
