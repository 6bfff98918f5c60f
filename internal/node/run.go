package node

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"maelstrom-node/internal/protocol"
)

// Run drives the node to completion: a dispatcher goroutine reads Stdin
// line by line, decodes and routes each envelope, and a writer goroutine
// drains the send queue to Stdout, serializing emission so output lines
// never interleave (spec.md §4.4, §5). Run blocks until Stdin is exhausted
// and the send queue has been fully drained, then returns. A non-nil error
// corresponds to spec.md §6.2's non-zero exit code.
func (n *Node) Run() error {
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		return n.writerLoop()
	})
	g.Go(func() error {
		return n.dispatchLoop(ctx)
	})

	return g.Wait()
}

// dispatchLoop is the single-threaded protocol state machine: it owns
// State exclusively for the lifetime of the process (spec.md §5).
func (n *Node) dispatchLoop(ctx context.Context) error {
	defer close(n.sendCh)

	reader := bufio.NewReaderSize(n.Stdin, 1<<20)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if line == "" {
				// Clean EOF: one final outbox replay to maximize
				// delivery before the writer drains and exits (spec.md
				// §4.2 "On shutdown").
				n.replayOutbox()
				return nil
			}
			return fmt.Errorf("truncated line at end of input: %q", line)
		}

		line = strings.TrimRight(line, "\r\n")
		if err := n.handleLine(line); err != nil {
			return err
		}
	}
}

func (n *Node) handleLine(line string) error {
	var env protocol.Envelope
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}

	if err := n.dispatch(env); err != nil {
		return err
	}

	n.inboundCount++
	if n.retryEvery > 0 && n.inboundCount%n.retryEvery == 0 {
		n.tick()
	}
	return nil
}

// dispatch routes env to the handler registered for its body's "type" tag.
// An unregistered tag is always fatal: either it is genuinely unknown
// (spec.md §4.3) or it is a reply-only variant arriving at an impossible
// position, such as init_ok reaching a node that never sent init (spec.md
// §4.1).
func (n *Node) dispatch(env protocol.Envelope) error {
	tag, err := env.BodyType()
	if err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}

	handler, ok := n.handlers[tag]
	if !ok {
		return fmt.Errorf("no handler for body type %q", tag)
	}

	if err := handler(n, env); err != nil {
		n.Log().WithError(err).WithField("type", tag).Error("handler failed")
		return err
	}
	return nil
}

func (n *Node) writerLoop() error {
	w := bufio.NewWriter(n.Stdout)
	for env := range n.sendCh {
		b, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("marshal outbound message: %w", err)
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flush stdout: %w", err)
		}
	}
	return nil
}
