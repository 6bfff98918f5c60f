// Package handlers wires the nine inbound body variants of spec.md §6.1 to
// the protocol dispatcher (spec.md §4.1). Each handler follows the shape
// described there: decode the expected variant, mutate state, emit a reply
// and any additional messages, return nil.
//
// Grounded on original_source/src/node/src/lib.rs's handle_* methods (the
// behavior) and on THuitema-Distributed-Systems-Tutorial's per-challenge
// main.go files (the registration idiom: one n.Handle call per body type).
package handlers

import (
	"fmt"

	"maelstrom-node/internal/node"
	"maelstrom-node/internal/protocol"
	"maelstrom-node/internal/ulid"
)

// Register installs every built-in handler onto n. Called once from
// cmd/maelstrom-node/main.go.
func Register(n *node.Node) {
	n.Handle("init", handleInit)
	n.Handle("echo", handleEcho)
	n.Handle("generate", handleGenerate)
	n.Handle("topology", handleTopology)
	n.Handle("read", handleRead)
	n.Handle("broadcast", handleBroadcast)
	n.Handle("broadcast_ok", handleBroadcastOk)
	n.Handle("sync", handleSync)
	n.Handle("sync_ok", handleSyncOk)
}

func handleInit(n *node.Node, env protocol.Envelope) error {
	var body protocol.InitBody
	if err := env.Decode(&body); err != nil {
		return err
	}

	n.State().SetIdentity(body.NodeID, body.NodeIDs)
	n.Log().WithField("peers", n.State().Peers).Info("node initialized")

	n.Send(env.Reply(protocol.InitOkBody{
		Type:      "init_ok",
		InReplyTo: body.MsgID,
	}))
	return nil
}

func handleEcho(n *node.Node, env protocol.Envelope) error {
	var body protocol.EchoBody
	if err := env.Decode(&body); err != nil {
		return err
	}

	n.Send(env.Reply(protocol.EchoOkBody{
		Type:      "echo_ok",
		MsgID:     n.NextMsgID(),
		InReplyTo: body.MsgID,
		Echo:      body.Echo,
	}))
	return nil
}

func handleGenerate(n *node.Node, env protocol.Envelope) error {
	var body protocol.GenerateBody
	if err := env.Decode(&body); err != nil {
		return err
	}

	n.Send(env.Reply(protocol.GenerateOkBody{
		Type:      "generate_ok",
		MsgID:     n.NextMsgID(),
		InReplyTo: body.MsgID,
		ID:        ulid.New(),
	}))
	return nil
}

func handleTopology(n *node.Node, env protocol.Envelope) error {
	var body protocol.TopologyBody
	if err := env.Decode(&body); err != nil {
		return err
	}

	n.State().SetTopology(body.Topology)
	n.Log().WithField("topology_size", len(body.Topology)).Debug("topology installed")

	n.Send(env.Reply(protocol.TopologyOkBody{
		Type:      "topology_ok",
		MsgID:     n.NextMsgID(),
		InReplyTo: body.MsgID,
	}))
	return nil
}

func handleRead(n *node.Node, env protocol.Envelope) error {
	var body protocol.ReadBody
	if err := env.Decode(&body); err != nil {
		return err
	}

	n.Send(env.Reply(protocol.ReadOkBody{
		Type:      "read_ok",
		MsgID:     n.NextMsgID(),
		InReplyTo: body.MsgID,
		Messages:  n.State().Store.Snapshot(),
	}))
	return nil
}

// handleBroadcast is the central case (spec.md §4.1): a duplicate value is
// acknowledged and dropped silently (L3); a new value is stored, replied
// to, and fanned out to every neighbour except the one it arrived from.
func handleBroadcast(n *node.Node, env protocol.Envelope) error {
	var body protocol.BroadcastBody
	if err := env.Decode(&body); err != nil {
		return err
	}

	if n.State().Store.Contains(body.Message) {
		n.Send(env.Reply(protocol.BroadcastOkBody{
			Type:      "broadcast_ok",
			MsgID:     n.NextMsgID(),
			InReplyTo: body.MsgID,
		}))
		return nil
	}

	n.State().Store.Add(body.Message)
	n.Send(env.Reply(protocol.BroadcastOkBody{
		Type:      "broadcast_ok",
		MsgID:     n.NextMsgID(),
		InReplyTo: body.MsgID,
	}))

	for _, neighbour := range n.State().Neighbours(env.Src) {
		fanout := protocol.BroadcastBody{
			Type:    "broadcast",
			MsgID:   body.MsgID,
			Message: body.Message,
		}
		n.State().EnqueueOutbox(neighbour, fanout)
		n.Send(env.Forward(neighbour, fanout))
	}
	return nil
}

func handleBroadcastOk(n *node.Node, env protocol.Envelope) error {
	var body protocol.BroadcastOkBody
	if err := env.Decode(&body); err != nil {
		return err
	}
	n.State().AckOutbox(env.Src, body.InReplyTo)
	return nil
}

// handleSync is the custom anti-entropy exchange (spec.md §4.1 "sync",
// GLOSSARY "Sync"): compare value sets, absorb what the peer has that we
// don't, and reply with what we have that the peer doesn't.
func handleSync(n *node.Node, env protocol.Envelope) error {
	var body protocol.SyncBody
	if err := env.Decode(&body); err != nil {
		return err
	}

	iHave, theyHave := n.State().Store.Diff(body.Messages)
	n.State().Store.Absorb(theyHave)

	n.Send(env.Reply(protocol.SyncOkBody{
		Type:      "sync_ok",
		MsgID:     n.NextMsgID(),
		InReplyTo: body.MsgID,
		Messages:  iHave,
	}))
	return nil
}

// handleSyncOk absorbs the peer's reported values. No reply, no outbox
// bookkeeping: sync is best-effort anti-entropy, not a reliable delivery
// primitive (spec.md §4.1, §9).
func handleSyncOk(n *node.Node, env protocol.Envelope) error {
	var body protocol.SyncOkBody
	if err := env.Decode(&body); err != nil {
		return fmt.Errorf("decode sync_ok: %w", err)
	}
	n.State().Store.Absorb(body.Messages)
	return nil
}
