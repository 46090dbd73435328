package rule

import "github.com/linknx-go/ruled/engine"

type testNode struct {
	tag      string
	attrs    map[string]string
	text     string
	children []*testNode
}

func newTestNode(tag string) *testNode {
	return &testNode{tag: tag, attrs: make(map[string]string)}
}

func (n *testNode) Tag() string { return n.tag }

func (n *testNode) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *testNode) Text() string { return n.text }

func (n *testNode) Children() []engine.Node {
	out := make([]engine.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *testNode) ChildrenNamed(name string) []engine.Node {
	var out []engine.Node
	for _, c := range n.children {
		if c.tag == name {
			out = append(out, c)
		}
	}
	return out
}

func (n *testNode) FirstChild(name string) (engine.Node, bool) {
	for _, c := range n.children {
		if c.tag == name {
			return c, true
		}
	}
	return nil, false
}

func (n *testNode) SetAttr(name, value string) {
	n.attrs[name] = value
}

func (n *testNode) SetText(s string) {
	n.text = s
}

func (n *testNode) AddChild(tag string) engine.MutableNode {
	c := newTestNode(tag)
	n.children = append(n.children, c)
	return c
}

var (
	_ engine.Node        = (*testNode)(nil)
	_ engine.MutableNode = (*testNode)(nil)
)
