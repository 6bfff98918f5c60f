package node_test

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maelstrom-node/internal/node"
	"maelstrom-node/internal/protocol"
)

func newTestNode(input string) (*node.Node, *strings.Builder) {
	n := node.NewNode()
	n.Stdin = strings.NewReader(input)
	var out strings.Builder
	n.Stdout = &out
	return n, &out
}

func readLines(t *testing.T, out *strings.Builder) []string {
	t.Helper()
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(out.String()))
	for sc.Scan() {
		if sc.Text() != "" {
			lines = append(lines, sc.Text())
		}
	}
	return lines
}

func TestHandleRegistersAndDispatches(t *testing.T) {
	n, out := newTestNode(`{"src":"c1","dest":"n1","body":{"type":"foo","msg_id":1}}` + "\n")

	called := false
	n.Handle("foo", func(n *node.Node, env protocol.Envelope) error {
		called = true
		return nil
	})

	require.NoError(t, n.Run())
	assert.True(t, called)
	assert.Empty(t, readLines(t, out))
}

func TestUnknownBodyTypeIsFatal(t *testing.T) {
	n, _ := newTestNode(`{"src":"c1","dest":"n1","body":{"type":"bogus"}}` + "\n")
	err := n.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestReplyOnlyVariantArrivingInboundIsFatal(t *testing.T) {
	// init_ok is never expected inbound: an "impossible position" per
	// spec.md §4.1, since this node never sends an init request of its own.
	n, _ := newTestNode(`{"src":"n2","dest":"n1","body":{"type":"init_ok","in_reply_to":1}}` + "\n")
	err := n.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init_ok")
}

func TestMalformedJSONIsFatal(t *testing.T) {
	n, _ := newTestNode("\n")
	err := n.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal message")
}

func TestTruncatedLineAtEOFIsFatal(t *testing.T) {
	n, _ := newTestNode(`{"src":"c1","dest":"n1","body":{"type":"foo"}`)
	n.Handle("foo", func(n *node.Node, env protocol.Envelope) error { return nil })
	err := n.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestCleanEOFWithNoTrailingDataExitsSuccessfully(t *testing.T) {
	n, _ := newTestNode("")
	require.NoError(t, n.Run())
}

func TestWriterSerializesOutputLinesInOrder(t *testing.T) {
	n, out := newTestNode(`{"src":"c1","dest":"n1","body":{"type":"foo","msg_id":1}}` + "\n")
	n.Handle("foo", func(n *node.Node, env protocol.Envelope) error {
		n.Send(env.Reply(protocol.EchoOkBody{Type: "echo_ok", InReplyTo: 1, Echo: "a"}))
		n.Send(env.Forward("n2", protocol.EchoBody{Type: "echo", MsgID: 2, Echo: "b"}))
		return nil
	})

	require.NoError(t, n.Run())
	lines := readLines(t, out)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"echo_ok"`)
	assert.Contains(t, lines[1], `"echo"`)
}

func TestNextMsgIDIsStrictlyIncreasing(t *testing.T) {
	n := node.NewNode()
	first := n.NextMsgID()
	second := n.NextMsgID()
	assert.Less(t, first, second)
}
