// Package protocol implements the wire codec (spec.md §4.3, §6.1): the
// newline-delimited JSON envelope and the tagged body variants it carries.
//
// Grounded on original_source/src/node/src/lib.rs (Message/MessageBody,
// into_reply/into_message) and on the body-struct-per-variant shape used
// throughout THuitema-Distributed-Systems-Tutorial's challenge solutions
// (BroadcastRequestBody, TopologyRequestBody, and so on).
package protocol

import (
	"encoding/json"
	"fmt"
)

// Envelope is an inbound message as read off the wire: src, dest, and a
// body whose concrete shape is not yet known until its "type" tag is
// inspected.
type Envelope struct {
	Src  string          `json:"src"`
	Dest string          `json:"dest"`
	Body json.RawMessage `json:"body"`
}

// BodyType reports the tagged discriminator of the envelope's body without
// fully decoding it.
func (e Envelope) BodyType() (string, error) {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(e.Body, &header); err != nil {
		return "", fmt.Errorf("decode body type: %w", err)
	}
	if header.Type == "" {
		return "", fmt.Errorf("body carries no type tag")
	}
	return header.Type, nil
}

// Decode unmarshals the envelope's body into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Body, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// OutEnvelope is a fully-formed outbound message, ready for the send queue.
// Outbound envelopes are value objects: built once by a handler and never
// mutated afterwards.
type OutEnvelope struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
	Body any    `json:"body"`
}

// Reply builds the response to an inbound envelope: source and destination
// are swapped, mirroring original_source's Message::into_reply instead of
// hand-building a literal at each call site (which is an easy place to
// transpose src/dest by mistake).
func (e Envelope) Reply(body any) OutEnvelope {
	return OutEnvelope{Src: e.Dest, Dest: e.Src, Body: body}
}

// Forward builds a new outbound envelope from this node (the envelope's own
// destination) to a third party, mirroring into_message. Used for broadcast
// fan-out, where the outbound message is not a reply to the sender but a
// message to some other peer.
func (e Envelope) Forward(dest string, body any) OutEnvelope {
	return OutEnvelope{Src: e.Dest, Dest: dest, Body: body}
}

// Body variants, §6.1. Every field required unless noted.

type InitBody struct {
	Type    string   `json:"type"`
	MsgID   uint64   `json:"msg_id"`
	NodeID  string   `json:"node_id"`
	NodeIDs []string `json:"node_ids"`
}

// InitOkBody carries no msg_id: a deviation from the otherwise-universal
// reply shape, preserved deliberately (spec.md §4.1, §9 — compatibility
// with the harness, not guessed at).
type InitOkBody struct {
	Type      string `json:"type"`
	InReplyTo uint64 `json:"in_reply_to"`
}

type EchoBody struct {
	Type  string `json:"type"`
	MsgID uint64 `json:"msg_id"`
	Echo  string `json:"echo"`
}

type EchoOkBody struct {
	Type      string `json:"type"`
	MsgID     uint64 `json:"msg_id"`
	InReplyTo uint64 `json:"in_reply_to"`
	Echo      string `json:"echo"`
}

type GenerateBody struct {
	Type  string `json:"type"`
	MsgID uint64 `json:"msg_id"`
}

type GenerateOkBody struct {
	Type      string `json:"type"`
	MsgID     uint64 `json:"msg_id"`
	InReplyTo uint64 `json:"in_reply_to"`
	ID        string `json:"id"`
}

type TopologyBody struct {
	Type     string              `json:"type"`
	MsgID    uint64              `json:"msg_id"`
	Topology map[string][]string `json:"topology"`
}

type TopologyOkBody struct {
	Type      string `json:"type"`
	MsgID     uint64 `json:"msg_id"`
	InReplyTo uint64 `json:"in_reply_to"`
}

type ReadBody struct {
	Type  string `json:"type"`
	MsgID uint64 `json:"msg_id"`
}

type ReadOkBody struct {
	Type      string   `json:"type"`
	MsgID     uint64   `json:"msg_id"`
	InReplyTo uint64   `json:"in_reply_to"`
	Messages  []uint32 `json:"messages"`
}

type BroadcastBody struct {
	Type    string `json:"type"`
	MsgID   uint64 `json:"msg_id"`
	Message uint32 `json:"message"`
}

type BroadcastOkBody struct {
	Type      string `json:"type"`
	MsgID     uint64 `json:"msg_id"`
	InReplyTo uint64 `json:"in_reply_to"`
}

// SyncBody and SyncOkBody are custom, non-Maelstrom-standard variants
// implementing the anti-entropy exchange (spec.md §4.1 "sync (custom...)").
type SyncBody struct {
	Type     string   `json:"type"`
	MsgID    uint64   `json:"msg_id"`
	Messages []uint32 `json:"messages"`
}

type SyncOkBody struct {
	Type      string   `json:"type"`
	MsgID     uint64   `json:"msg_id"`
	InReplyTo uint64   `json:"in_reply_to"`
	Messages  []uint32 `json:"messages"`
}
