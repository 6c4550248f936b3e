package showcase

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// BoxType is the only node type the card builder emits.
const BoxType = "div"

// Style holds css-like properties keyed by their camelCase name.
type Style map[string]string

// Node is one box of the layout tree handed to the layout engine. A node
// carries either a text leaf or an ordered list of children, never both.
type Node struct {
	Type  string `json:"type"`
	Props Props  `json:"props"`
}

type Props struct {
	Style    Style
	Text     string
	Children []*Node
}

func Box(style Style, children ...*Node) *Node {
	return &Node{
		Type:  BoxType,
		Props: Props{Style: style, Children: children},
	}
}

func TextBox(style Style, text string) *Node {
	return &Node{
		Type:  BoxType,
		Props: Props{Style: style, Text: text},
	}
}

// IsText reports whether the node is a text leaf.
func (n *Node) IsText() bool {
	return n.Props.Children == nil && n.Props.Text != ""
}

// Walk visits the node and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}

	fn(n)

	for _, child := range n.Props.Children {
		child.Walk(fn)
	}
}

func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) { count++ })

	return count
}

// Texts returns every text leaf in document order.
func (n *Node) Texts() []string {
	var texts []string
	n.Walk(func(node *Node) {
		if node.IsText() {
			texts = append(texts, node.Props.Text)
		}
	})

	return texts
}

type propsJSON struct {
	Style    Style           `json:"style,omitempty"`
	Children json.RawMessage `json:"children,omitempty"`
}

func (p Props) MarshalJSON() ([]byte, error) {
	out := propsJSON{Style: p.Style}

	var err error
	switch {
	case p.Children != nil:
		out.Children, err = json.Marshal(p.Children)
	case p.Text != "":
		out.Children, err = json.Marshal(p.Text)
	}

	if err != nil {
		return nil, err
	}

	return json.Marshal(out)
}

func (p *Props) UnmarshalJSON(data []byte) error {
	var in propsJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	p.Style = in.Style

	if len(in.Children) == 0 {
		return nil
	}

	switch in.Children[0] {
	case '"':
		return json.Unmarshal(in.Children, &p.Text)
	case '[':
		return json.Unmarshal(in.Children, &p.Children)
	default:
		return errors.Errorf("unexpected children payload %s", string(in.Children))
	}
}
