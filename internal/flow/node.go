package flow

import (
	"fmt"

	"github.com/addis-listings/dalal-bot/internal/session"
)

// InputKind declares what a node's validator accepts.
type InputKind string

const (
	KindChoice InputKind = "choice"
	KindNumber InputKind = "number"
	KindText   InputKind = "text"
	KindPhotos InputKind = "photos"
	KindBool   InputKind = "bool"
)

// NodeID identifies a node within a flow graph.
type NodeID string

// NodeComplete is the terminal pseudo-node returned by a transition
// function when the flow is finished.
const NodeComplete NodeID = "__complete__"

// NextFunc computes the next node from everything answered so far. It must
// be total: every reachable answer combination maps to exactly one node or
// NodeComplete.
type NextFunc func(session.Answers) NodeID

// Node is one immutable question/step in a flow graph.
type Node struct {
	ID        NodeID
	PromptKey string
	Kind      InputKind
	// Options is the closed canonical value set for choice nodes; for
	// number and bool nodes it only drives keyboard rendering.
	Options []string
	// AllowAny accepts the "Any" sentinel, which omits the answer instead
	// of storing a value. Used by filter nodes only.
	AllowAny bool
	// MinPhotos is the minimum photo count before "done" closes the loop.
	MinPhotos int
	Next      NextFunc
	// Field overrides the answer field name; defaults to the node id.
	Field string
}

func (n *Node) field() string {
	if n.Field != "" {
		return n.Field
	}
	return string(n.ID)
}

// MatchFunc decides whether an event triggers a graph while no session is
// active, optionally seeding the new session's answers (e.g. the listing
// id embedded in a moderation callback).
type MatchFunc func(Event) (session.Answers, bool)

// Graph is the static, declarative description of one flow.
type Graph struct {
	Kind  session.FlowKind
	Start NodeID
	nodes map[NodeID]*Node
	match MatchFunc
}

func newGraph(kind session.FlowKind, start NodeID, match MatchFunc, nodes ...*Node) *Graph {
	index := make(map[NodeID]*Node, len(nodes))
	for _, n := range nodes {
		if _, dup := index[n.ID]; dup {
			panic(fmt.Sprintf("flow: duplicate node %q in %s graph", n.ID, kind))
		}
		if n.Next == nil {
			panic(fmt.Sprintf("flow: node %q in %s graph has no transition", n.ID, kind))
		}
		index[n.ID] = n
	}

	if _, ok := index[start]; !ok {
		panic(fmt.Sprintf("flow: start node %q missing from %s graph", start, kind))
	}

	return &Graph{Kind: kind, Start: start, nodes: index, match: match}
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id NodeID) *Node {
	if g == nil {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns every node in the graph, for exhaustiveness checks.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Match reports whether the event triggers this graph.
func (g *Graph) Match(ev Event) (session.Answers, bool) {
	if g == nil || g.match == nil {
		return nil, false
	}
	return g.match(ev)
}

func triggerMatch(trigger string) MatchFunc {
	return func(ev Event) (session.Answers, bool) {
		switch ev.Kind {
		case EventCallback:
			if ev.Callback == trigger {
				return nil, true
			}
		case EventText:
			if ev.Text == trigger {
				return nil, true
			}
		}
		return nil, false
	}
}
