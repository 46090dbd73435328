// Package config implements the configuration document surface: parsing an
// XML document into the engine.Node tree that conditions, actions, and
// rules configure themselves from, serializing a tree back out, and
// watching a configuration file for changes. Grounded on
// _examples/purpleidea-mgmt/yamlgraph/gconfig.go's Parse/NewGraphFromConfig
// shape (a document is parsed once into a generic tree, then walked to
// build live objects) and on the narrow element API
// original_source/linknx/src/ruleserver.cpp drives through ticpp.
package config

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/sanity-io/litter"

	"github.com/linknx-go/ruled/engine"
)

// Element is a generic XML tree node: engine.Node's and
// engine.MutableNode's concrete implementation. encoding/xml has no public
// DOM type, so Parse builds this tree itself by walking xml.Decoder tokens.
type Element struct {
	tag      string
	attrs    map[string]string
	text     string
	children []*Element
}

func newElement(tag string) *Element {
	return &Element{tag: tag, attrs: make(map[string]string)}
}

func (e *Element) Tag() string { return e.tag }

func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *Element) Text() string { return strings.TrimSpace(e.text) }

func (e *Element) Children() []engine.Node {
	out := make([]engine.Node, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out
}

func (e *Element) ChildrenNamed(name string) []engine.Node {
	var out []engine.Node
	for _, c := range e.children {
		if c.tag == name {
			out = append(out, c)
		}
	}
	return out
}

func (e *Element) FirstChild(name string) (engine.Node, bool) {
	for _, c := range e.children {
		if c.tag == name {
			return c, true
		}
	}
	return nil, false
}

func (e *Element) SetAttr(name, value string) {
	e.attrs[name] = value
}

func (e *Element) SetText(s string) {
	e.text = s
}

func (e *Element) AddChild(tag string) engine.MutableNode {
	c := newElement(tag)
	e.children = append(e.children, c)
	return c
}

var (
	_ engine.Node        = (*Element)(nil)
	_ engine.MutableNode = (*Element)(nil)
)

// NewDocument returns an empty, writable root Element with the given tag,
// for building a document to Write back out.
func NewDocument(tag string) *Element {
	return newElement(tag)
}

// Parse reads an XML document from r and returns its root Element.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, engine.NewConfigError("config: parse error: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := newElement(t.Name.Local)
			for _, a := range t.Attr {
				el.attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, engine.NewConfigError("config: unbalanced document")
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}
	if root == nil {
		return nil, engine.NewConfigError("config: empty document")
	}
	return root, nil
}

// ParseString is a convenience wrapper around Parse for literal documents,
// used by tests.
func ParseString(s string) (*Element, error) {
	return Parse(strings.NewReader(s))
}

// Write serializes root back out as an XML document.
func Write(w io.Writer, root *Element) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := writeElement(enc, root); err != nil {
		return err
	}
	return enc.Flush()
}

func writeElement(enc *xml.Encoder, e *Element) error {
	start := xml.StartElement{Name: xml.Name{Local: e.tag}}
	for k, v := range e.attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: k}, Value: v})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.text != "" {
		if err := enc.EncodeToken(xml.CharData(e.text)); err != nil {
			return err
		}
	}
	for _, c := range e.children {
		if err := writeElement(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(xml.EndElement{Name: start.Name})
}

// String renders root as an XML document, primarily for debugging and CLI
// output.
func String(root *Element) string {
	var buf bytes.Buffer
	if err := Write(&buf, root); err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}
	return buf.String()
}

// Dump renders root's raw parsed element tree (attributes, text, children,
// unexported fields included) for debugging a document that fails before
// it even reaches rule configuration — complements String, which only
// shows the XML-shaped view.
func Dump(root *Element) string {
	return litter.Sdump(root)
}
