package richtext

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidRoot is returned when a document root is neither a node nor a
// sequence of nodes.
var ErrInvalidRoot = errors.New("richtext: invalid document root")

// NodeType is the discriminant of a document node.
type NodeType string

// Node types understood by the default resolvers.
const (
	TypeText           NodeType = "text"
	TypeDoc            NodeType = "doc"
	TypeParagraph      NodeType = "paragraph"
	TypeQuote          NodeType = "blockquote"
	TypeBulletList     NodeType = "bullet_list"
	TypeOrderedList    NodeType = "ordered_list"
	TypeListItem       NodeType = "list_item"
	TypeHeading        NodeType = "heading"
	TypeCodeBlock      NodeType = "code_block"
	TypeHorizontalRule NodeType = "horizontal_rule"
	TypeHardBreak      NodeType = "hard_break"
	TypeImage          NodeType = "image"
	TypeBlok           NodeType = "blok"
)

// MarkType is the discriminant of a text mark.
type MarkType string

// Mark types understood by the default resolvers.
const (
	MarkBold      MarkType = "bold"
	MarkStrong    MarkType = "strong"
	MarkStrike    MarkType = "strike"
	MarkUnderline MarkType = "underline"
	MarkItalic    MarkType = "italic"
	MarkCode      MarkType = "code"
	MarkLink      MarkType = "link"
	MarkStyled    MarkType = "styled"
)

// Shape partitions nodes into the three variants of the document model.
type Shape uint8

const (
	ShapeBlock     Shape = iota // Structural element, including unknown tags
	ShapeText                   // Literal text with optional marks
	ShapeComponent              // Embedded component instances
)

// String returns the string representation of the Shape.
func (s Shape) String() string {
	switch s {
	case ShapeBlock:
		return "Block"
	case ShapeText:
		return "Text"
	case ShapeComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// BlockShape says which of children and attributes a block tag carries.
type BlockShape uint8

const (
	BlockUnknown             BlockShape = iota // Tag not in the built-in set
	BlockWithContent                           // doc, paragraph, blockquote, bullet_list, list_item
	BlockWithContentAndAttrs                   // heading, ordered_list, code_block
	BlockWithAttrs                             // image
	BlockWithoutOptions                        // horizontal_rule, hard_break
)

// BlockShape classifies a block tag.
func (t NodeType) BlockShape() BlockShape {
	switch t {
	case TypeDoc, TypeParagraph, TypeQuote, TypeBulletList, TypeListItem:
		return BlockWithContent
	case TypeHeading, TypeOrderedList, TypeCodeBlock:
		return BlockWithContentAndAttrs
	case TypeImage:
		return BlockWithAttrs
	case TypeHorizontalRule, TypeHardBreak:
		return BlockWithoutOptions
	default:
		return BlockUnknown
	}
}

// MarkShape says whether a mark carries attributes.
type MarkShape uint8

const (
	MarkUnknown   MarkShape = iota // Tag not in the built-in set
	MarkPlain                      // bold, strong, strike, underline, italic, code
	MarkWithAttrs                  // link, styled
)

// Shape classifies a mark tag.
func (t MarkType) Shape() MarkShape {
	switch t {
	case MarkBold, MarkStrong, MarkStrike, MarkUnderline, MarkItalic, MarkCode:
		return MarkPlain
	case MarkLink, MarkStyled:
		return MarkWithAttrs
	default:
		return MarkUnknown
	}
}

// Node is one element of a rich-text document.
type Node struct {
	Type    NodeType `json:"type"`
	Text    string   `json:"text,omitempty"`
	Marks   []Mark   `json:"marks,omitempty"`
	Content []*Node  `json:"content,omitempty"`
	Attrs   Attrs    `json:"attrs,omitempty"`
}

// Mark is a text-level annotation applied to a text node.
type Mark struct {
	Type  MarkType `json:"type"`
	Attrs Attrs    `json:"attrs,omitempty"`
}

// Shape returns the variant of n. Every node has exactly one shape; tags
// that are neither text nor blok are blocks, known or not.
func (n *Node) Shape() Shape {
	switch n.Type {
	case TypeText:
		return ShapeText
	case TypeBlok:
		return ShapeComponent
	default:
		return ShapeBlock
	}
}

// IsText reports whether n is a text node.
func IsText(n *Node) bool { return n != nil && n.Shape() == ShapeText }

// IsBlock reports whether n is a block node.
func IsBlock(n *Node) bool { return n != nil && n.Shape() == ShapeBlock }

// IsComponent reports whether n is a component node.
func IsComponent(n *Node) bool { return n != nil && n.Shape() == ShapeComponent }

// NewText creates a text node with the given marks.
func NewText(text string, marks ...Mark) *Node {
	return &Node{Type: TypeText, Text: text, Marks: marks}
}

// NewBlock creates a block node.
func NewBlock(t NodeType, attrs Attrs, content ...*Node) *Node {
	return &Node{Type: t, Attrs: attrs, Content: content}
}

// NewComponent creates a component node embedding the given instances.
func NewComponent(id string, instances ...Instance) *Node {
	return &Node{
		Type:  TypeBlok,
		Attrs: Attrs{"id": id, "body": instances},
	}
}

// ComponentID returns the id attribute of a component node.
func (n *Node) ComponentID() string {
	return n.Attrs.String("id")
}

// Instances returns the component instances embedded in a component node,
// in document order. Entries that are not objects are skipped.
func (n *Node) Instances() []Instance {
	if n == nil {
		return nil
	}
	switch body := n.Attrs["body"].(type) {
	case []Instance:
		return body
	case []*Instance:
		out := make([]Instance, 0, len(body))
		for _, inst := range body {
			if inst != nil {
				out = append(out, *inst)
			}
		}
		return out
	case []map[string]any:
		out := make([]Instance, 0, len(body))
		for _, raw := range body {
			out = append(out, instanceFromMap(raw))
		}
		return out
	case []any:
		out := make([]Instance, 0, len(body))
		for _, item := range body {
			switch v := item.(type) {
			case map[string]any:
				out = append(out, instanceFromMap(v))
			case Instance:
				out = append(out, v)
			case *Instance:
				if v != nil {
					out = append(out, *v)
				}
			}
		}
		return out
	default:
		return nil
	}
}

// Instance is one embedded component: its type, unique id and fields.
type Instance struct {
	Component string
	UID       string
	Fields    map[string]any
}

func instanceFromMap(raw map[string]any) Instance {
	inst := Instance{Fields: make(map[string]any, len(raw))}
	for k, v := range raw {
		switch k {
		case "component":
			inst.Component = stringOf(v)
		case "_uid":
			inst.UID = stringOf(v)
		default:
			inst.Fields[k] = v
		}
	}
	return inst
}

// Data returns the flat instance object as the CMS delivers it.
func (i Instance) Data() map[string]any {
	out := make(map[string]any, len(i.Fields)+2)
	for k, v := range i.Fields {
		out[k] = v
	}
	out["component"] = i.Component
	out["_uid"] = i.UID
	return out
}

// MarshalJSON implements json.Marshaler.
func (i Instance) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Data())
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Instance) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = instanceFromMap(raw)
	return nil
}

// Root is the input of a render call: a single node or a node sequence.
// The zero Root is invalid.
type Root struct {
	node  *Node
	nodes []*Node
	list  bool
}

// Single returns a root holding one node.
func Single(n *Node) Root {
	return Root{node: n}
}

// Sequence returns a root holding an ordered node sequence.
func Sequence(nodes ...*Node) Root {
	if nodes == nil {
		nodes = []*Node{}
	}
	return Root{nodes: nodes, list: true}
}

// IsList reports whether the root is a node sequence.
func (r Root) IsList() bool { return r.list }

// Nodes returns the root nodes.
func (r Root) Nodes() []*Node {
	if r.list {
		return r.nodes
	}
	if r.node == nil {
		return nil
	}
	return []*Node{r.node}
}

// Valid reports whether the root can be rendered.
func (r Root) Valid() bool {
	if r.list {
		return true
	}
	return r.node != nil
}

// ParseRoot decodes a JSON document root: an object is a single node and an
// array is a node sequence. Any other JSON value yields ErrInvalidRoot.
func ParseRoot(data []byte) (Root, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Root{}, ErrInvalidRoot
	}

	switch trimmed[0] {
	case '{':
		var n Node
		if err := json.Unmarshal(data, &n); err != nil {
			return Root{}, fmt.Errorf("richtext: decode document: %w", err)
		}
		return Single(&n), nil
	case '[':
		var nodes []*Node
		if err := json.Unmarshal(data, &nodes); err != nil {
			return Root{}, fmt.Errorf("richtext: decode document: %w", err)
		}
		return Sequence(nodes...), nil
	default:
		return Root{}, ErrInvalidRoot
	}
}

// UnmarshalJSON implements json.Unmarshaler using ParseRoot.
func (r *Root) UnmarshalJSON(data []byte) error {
	root, err := ParseRoot(data)
	if err != nil {
		return err
	}
	*r = root
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Root) MarshalJSON() ([]byte, error) {
	if r.list {
		return json.Marshal(r.nodes)
	}
	return json.Marshal(r.node)
}

// Attrs holds node and mark attributes.
type Attrs map[string]any

// Clone returns a shallow copy of a. The result is never nil.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Without returns a copy of a without the given keys.
func (a Attrs) Without(keys ...string) Attrs {
	out := a.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// String returns the attribute as a string, or "" when absent.
func (a Attrs) String(key string) string {
	return stringOf(a[key])
}

// Int returns the attribute as an integer, or def when absent or not numeric.
func (a Attrs) Int(key string, def int) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return fmt.Sprint(s)
	}
}
