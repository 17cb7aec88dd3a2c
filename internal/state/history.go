package state

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// labelRunes caps the text preview shown on each history node.
const labelRunes = 24

// Change summarises one commit of the shared document.
type Change struct {
	Hash    string
	Actor   string
	Seq     uint64
	Message string
	Deps    []string
	Text    string
}

// Changes lists every commit in causal order with the text as of that
// commit.
func (s *SharedText) Changes() ([]Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := s.doc.Changes()
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	out := make([]Change, 0, len(changes))
	for _, ch := range changes {
		c := Change{
			Hash:    ch.Hash().String(),
			Actor:   ch.ActorID(),
			Seq:     ch.ActorSeq(),
			Message: ch.Message(),
		}
		for _, d := range ch.Dependencies() {
			c.Deps = append(c.Deps, d.String())
		}
		at, err := s.doc.Fork(ch.Hash())
		if err != nil {
			return nil, fmt.Errorf("failed to checkout %s: %w", c.Hash, err)
		}
		if v, err := at.Path(TextKey).Text().Get(); err == nil {
			c.Text = v
		}
		out = append(out, c)
	}
	return out, nil
}

// RenderHistory writes the change graph of the document to w as SVG.
func (s *SharedText) RenderHistory(w io.Writer) error {
	changes, err := s.Changes()
	if err != nil {
		return err
	}

	g := graphviz.New()
	defer g.Close()
	graph, err := g.Graph()
	if err != nil {
		return fmt.Errorf("failed to setup graph: %w", err)
	}
	defer graph.Close()

	nodes := make(map[string]*cgraph.Node, len(changes))
	edges := 0
	for _, c := range changes {
		n, err := graph.CreateNode(c.Hash)
		if err != nil {
			return fmt.Errorf("failed to create node: %w", err)
		}
		n.SetLabel(fmt.Sprintf("%s %s@%d %q", c.Hash[:8], shortActor(c.Actor), c.Seq, preview(c.Text)))
		nodes[c.Hash] = n

		for _, d := range c.Deps {
			parent, ok := nodes[d]
			if !ok {
				continue
			}
			edges++
			if _, err := graph.CreateEdge(strconv.Itoa(edges), parent, n); err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
		}
	}

	if err := g.Render(graph, graphviz.SVG, w); err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	return nil
}

func shortActor(a string) string {
	if len(a) > 8 {
		return a[:8]
	}
	return a
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= labelRunes {
		return text
	}
	return string(r[:labelRunes]) + "…"
}
