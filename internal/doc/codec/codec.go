// Package codec serializes document trees as JSON.
//
// Each node is an object of the form
//
//	{"kind":"Paragraph","attrs":{"k":"v"},"text":"…","children":[…]}
//
// where attrs, text and children are omitted when empty. Integral numbers
// decode as int so slot indexes survive a round trip unchanged.
package codec

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/tabstorm/internal/doc/node"
)

// Errors returned by the codec.
var (
	ErrInvalidJSON = errors.New("invalid JSON")
	ErrNotObject   = errors.New("node is not a JSON object")
	ErrMissingKind = errors.New("node has no kind")
	ErrBadChildren = errors.New("children is not an array")
	ErrNilNode     = errors.New("nil node")
)

// Field names of the wire form.
const (
	fieldKind     = "kind"
	fieldAttrs    = "attrs"
	fieldText     = "text"
	fieldChildren = "children"
)

// Decode parses a serialized tree.
func Decode(data []byte) (*node.Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return decodeNode(gjson.ParseBytes(data), "$")
}

// DecodeString parses a serialized tree held in a string.
func DecodeString(s string) (*node.Node, error) {
	return Decode([]byte(s))
}

func decodeNode(r gjson.Result, path string) (*node.Node, error) {
	if !r.IsObject() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotObject)
	}
	kind := r.Get(fieldKind)
	if kind.Type != gjson.String || kind.String() == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingKind)
	}

	attrs := make(map[string]any)
	r.Get(fieldAttrs).ForEach(func(k, v gjson.Result) bool {
		attrs[k.String()] = decodeValue(v)
		return true
	})
	n := node.New(node.Kind(kind.String()), attrs)
	if t := r.Get(fieldText); t.Exists() {
		n.SetText(t.String())
	}

	children := r.Get(fieldChildren)
	if !children.Exists() {
		return n, nil
	}
	if !children.IsArray() {
		return nil, fmt.Errorf("%s: %w", path, ErrBadChildren)
	}
	var err error
	i := 0
	children.ForEach(func(_, v gjson.Result) bool {
		var child *node.Node
		child, err = decodeNode(v, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return false
		}
		err = n.AppendChild(child)
		i++
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func decodeValue(v gjson.Result) any {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < 1<<53 {
			return int(v.Int())
		}
		return v.Num
	case gjson.String:
		return v.String()
	case gjson.Null:
		return nil
	default:
		return v.Value()
	}
}

// Encode serializes n and its subtree in compact form. Attribute keys are
// written in sorted order so output is stable.
func Encode(n *node.Node) ([]byte, error) {
	if n == nil {
		return nil, ErrNilNode
	}
	out, err := sjson.SetBytes([]byte(`{}`), fieldKind, string(n.Kind()))
	if err != nil {
		return nil, err
	}

	if keys := n.AttrKeys(); len(keys) > 0 {
		attrs := []byte(`{}`)
		for _, k := range keys {
			v, _ := n.Attr(k)
			if attrs, err = sjson.SetBytes(attrs, escapeKey(k), v); err != nil {
				return nil, fmt.Errorf("attr %q: %w", k, err)
			}
		}
		if out, err = sjson.SetRawBytes(out, fieldAttrs, attrs); err != nil {
			return nil, err
		}
	}

	if n.Text() != "" {
		if out, err = sjson.SetBytes(out, fieldText, n.Text()); err != nil {
			return nil, err
		}
	}

	if n.ChildCount() > 0 {
		if out, err = sjson.SetRawBytes(out, fieldChildren, []byte(`[]`)); err != nil {
			return nil, err
		}
		for _, c := range n.Children() {
			raw, err := Encode(c)
			if err != nil {
				return nil, err
			}
			if out, err = sjson.SetRawBytes(out, fieldChildren+".-1", raw); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// EncodeIndent serializes n as indented JSON.
func EncodeIndent(n *node.Node) ([]byte, error) {
	raw, err := Encode(n)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  "}), nil
}

// Colorize adds terminal color escapes to JSON output.
func Colorize(data []byte) []byte {
	return pretty.Color(data, nil)
}

// Compact strips insignificant whitespace.
func Compact(data []byte) []byte {
	return pretty.Ugly(data)
}

// escapeKey escapes characters sjson treats as path syntax.
func escapeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%', ':':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
