// Command maelstrom-node is a single-process Maelstrom test-harness node
// implementing echo, unique-id generation, and broadcast/gossip with
// cluster topology intake (spec.md §1–§2).
//
// Process startup and logging configuration live here (the node takes no
// command-line arguments),
// outside the hard core in internal/, matching THuitema-Distributed-
// Systems-Tutorial's thin main() that just builds a node, registers
// handlers, and calls Run.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"maelstrom-node/internal/handlers"
	"maelstrom-node/internal/node"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	n := node.NewNode()
	handlers.Register(n)

	if err := n.Run(); err != nil {
		n.Log().WithError(err).Error("node terminated")
		os.Exit(1)
	}
}
