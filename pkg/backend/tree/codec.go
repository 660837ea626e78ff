package tree

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
)

// Binary format, one document:
//
//	magic "RT" | version | uvarint count | node*
//
// A node is a kind byte followed by its fields. Strings and byte blobs are
// uvarint length prefixed. Attributes are written in key order, so equal
// trees encode to equal bytes.
const (
	codecVersion = 1

	// MaxDepth bounds nesting. Encode refuses deeper trees so every
	// encoding it produces decodes.
	MaxDepth = 256

	// MaxAllocation bounds a single string or blob on decode (4MB).
	MaxAllocation = 4 * 1024 * 1024

	// MaxCollectionCount bounds children and attribute counts on decode.
	MaxCollectionCount = 100_000
)

const (
	tagText byte = iota + 1
	tagElement
	tagComponent
	tagPlaceholder
)

// Codec errors.
var (
	ErrBadMagic           = errors.New("tree: not a richtext tree encoding")
	ErrVersion            = errors.New("tree: unsupported encoding version")
	ErrVarintOverflow     = errors.New("tree: varint overflow")
	ErrAllocationTooLarge = errors.New("tree: allocation size exceeds limit")
	ErrCollectionTooLarge = errors.New("tree: collection count exceeds limit")
	ErrMaxDepthExceeded   = errors.New("tree: maximum nesting depth exceeded")
	ErrUnknownKind        = errors.New("tree: unknown node kind")
)

// Encode writes nodes in the binary format. Nil nodes are skipped. Trees
// nested deeper than MaxDepth fail with ErrMaxDepthExceeded.
func Encode(nodes []*Node) ([]byte, error) {
	e := &encoder{buf: make([]byte, 0, 256)}
	e.buf = append(e.buf, 'R', 'T', codecVersion)

	nodes = compact(nodes)
	e.writeUvarint(uint64(len(nodes)))
	for _, n := range nodes {
		if err := e.writeNode(n, 0); err != nil {
			return nil, err
		}
	}
	return e.buf, nil
}

// Decode reads nodes written by Encode.
func Decode(buf []byte) ([]*Node, error) {
	if len(buf) < 3 || buf[0] != 'R' || buf[1] != 'T' {
		return nil, ErrBadMagic
	}
	if buf[2] != codecVersion {
		return nil, ErrVersion
	}

	d := &decoder{buf: buf, pos: 3}
	count, err := d.readCount()
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		n, err := d.readNode(0)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if d.pos != len(d.buf) {
		return nil, errors.New("tree: trailing bytes after document")
	}
	return nodes, nil
}

type encoder struct {
	buf []byte
}

func (e *encoder) writeUvarint(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

func (e *encoder) writeString(s string) {
	e.writeUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) writeAttrs(attrs map[string]string) {
	e.writeUvarint(uint64(len(attrs)))
	for _, k := range sortedKeys(attrs) {
		e.writeString(k)
		e.writeString(attrs[k])
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *encoder) writeChildren(children []*Node, depth int) error {
	children = compact(children)
	e.writeUvarint(uint64(len(children)))
	for _, c := range children {
		if err := e.writeNode(c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeNode(n *Node, depth int) error {
	if depth > MaxDepth {
		return ErrMaxDepthExceeded
	}
	switch n.Kind {
	case KindText:
		e.buf = append(e.buf, tagText)
		e.writeString(n.Text)
		return nil

	case KindElement:
		e.buf = append(e.buf, tagElement)
		e.writeString(n.Tag)
		e.writeAttrs(n.Attrs)
		return e.writeChildren(n.Children, depth)

	case KindComponent:
		e.buf = append(e.buf, tagComponent)
		e.writeString(n.Tag)
		e.writeAttrs(n.Attrs)
		var blok []byte
		if n.Blok != nil {
			var err error
			if blok, err = json.Marshal(n.Blok); err != nil {
				return err
			}
		}
		e.writeUvarint(uint64(len(blok)))
		e.buf = append(e.buf, blok...)
		return e.writeChildren(n.Children, depth)

	case KindPlaceholder:
		e.buf = append(e.buf, tagPlaceholder)
		e.writeString(n.Tag)
		e.writeAttrs(n.Attrs)
		e.writeString(n.Text)
		return e.writeChildren(n.Children, depth)

	default:
		return ErrUnknownKind
	}
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.pos
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readUvarint() (uint64, error) {
	var v uint64
	var shift uint
	for {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, ErrVarintOverflow
		}
	}
}

func (d *decoder) readBytes() ([]byte, error) {
	length, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	if length > uint64(d.remaining()) {
		return nil, io.ErrUnexpectedEOF
	}
	if length > MaxAllocation {
		return nil, ErrAllocationTooLarge
	}
	b := d.buf[d.pos : d.pos+int(length)]
	d.pos += int(length)
	return b, nil
}

func (d *decoder) readString() (string, error) {
	b, err := d.readBytes()
	return string(b), err
}

// readCount reads a collection size. Every item takes at least one byte,
// which bounds the count by the remaining input.
func (d *decoder) readCount() (int, error) {
	count, err := d.readUvarint()
	if err != nil {
		return 0, err
	}
	if count > MaxCollectionCount {
		return 0, ErrCollectionTooLarge
	}
	if count > uint64(d.remaining()) {
		return 0, io.ErrUnexpectedEOF
	}
	return int(count), nil
}

func (d *decoder) readAttrs() (map[string]string, error) {
	count, err := d.readCount()
	if err != nil || count == 0 {
		return nil, err
	}
	attrs := make(map[string]string, count)
	for i := 0; i < count; i++ {
		k, err := d.readString()
		if err != nil {
			return nil, err
		}
		v, err := d.readString()
		if err != nil {
			return nil, err
		}
		attrs[k] = v
	}
	return attrs, nil
}

func (d *decoder) readChildren(depth int) ([]*Node, error) {
	count, err := d.readCount()
	if err != nil || count == 0 {
		return nil, err
	}
	children := make([]*Node, count)
	for i := range children {
		if children[i], err = d.readNode(depth + 1); err != nil {
			return nil, err
		}
	}
	return children, nil
}

func (d *decoder) readNode(depth int) (*Node, error) {
	if depth > MaxDepth {
		return nil, ErrMaxDepthExceeded
	}
	tag, err := d.readByte()
	if err != nil {
		return nil, err
	}

	n := &Node{}
	switch tag {
	case tagText:
		n.Kind = KindText
		n.Text, err = d.readString()
		return n, err

	case tagElement:
		n.Kind = KindElement
		if n.Tag, err = d.readString(); err != nil {
			return nil, err
		}
		if n.Attrs, err = d.readAttrs(); err != nil {
			return nil, err
		}

	case tagComponent:
		n.Kind = KindComponent
		if n.Tag, err = d.readString(); err != nil {
			return nil, err
		}
		if n.Attrs, err = d.readAttrs(); err != nil {
			return nil, err
		}
		blok, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		if len(blok) > 0 {
			if err := json.Unmarshal(blok, &n.Blok); err != nil {
				return nil, err
			}
		}

	case tagPlaceholder:
		n.Kind = KindPlaceholder
		if n.Tag, err = d.readString(); err != nil {
			return nil, err
		}
		if n.Attrs, err = d.readAttrs(); err != nil {
			return nil, err
		}
		if n.Text, err = d.readString(); err != nil {
			return nil, err
		}

	default:
		return nil, ErrUnknownKind
	}

	n.Children, err = d.readChildren(depth)
	if err != nil {
		return nil, err
	}
	return n, nil
}
