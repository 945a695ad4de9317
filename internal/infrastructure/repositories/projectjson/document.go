package projectjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const indentUnit = "  "

type nodeKind int

const (
	kindScalar nodeKind = iota
	kindObject
	kindArray
)

// node is a JSON value that remembers the order of object members.
type node struct {
	kind    nodeKind
	scalar  any
	members []*member
	items   []*node
}

type member struct {
	key   string
	value *node
}

// get returns the member value for key, or nil.
func (n *node) get(key string) *node {
	for _, m := range n.members {
		if m.key == key {
			return m.value
		}
	}
	return nil
}

// stringValue returns the scalar string, if the node is one.
func (n *node) stringValue() (string, bool) {
	if n == nil || n.kind != kindScalar {
		return "", false
	}
	value, ok := n.scalar.(string)
	return value, ok
}

// parseDocument decodes a JSON document whose root must be an object.
func parseDocument(data []byte) (*node, error) {
	decoder := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	decoder.UseNumber()

	root, err := parseValue(decoder)
	if err != nil {
		return nil, err
	}
	if root.kind != kindObject {
		return nil, errors.New("document root is not an object")
	}
	if _, err = decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the document root")
	}
	return root, nil
}

func parseValue(decoder *json.Decoder) (*node, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := token.(json.Delim)
	if !ok {
		return &node{kind: kindScalar, scalar: token}, nil
	}

	switch delim {
	case '{':
		object := &node{kind: kindObject}
		for decoder.More() {
			keyToken, keyErr := decoder.Token()
			if keyErr != nil {
				return nil, keyErr
			}
			key, isString := keyToken.(string)
			if !isString {
				return nil, fmt.Errorf("unexpected object key %v", keyToken)
			}
			value, valueErr := parseValue(decoder)
			if valueErr != nil {
				return nil, valueErr
			}
			object.members = append(object.members, &member{key: key, value: value})
		}
		_, err = decoder.Token()
		return object, err
	case '[':
		array := &node{kind: kindArray}
		for decoder.More() {
			item, itemErr := parseValue(decoder)
			if itemErr != nil {
				return nil, itemErr
			}
			array.items = append(array.items, item)
		}
		_, err = decoder.Token()
		return array, err
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// render writes the document indented with two spaces and a trailing newline.
func render(root *node) (string, error) {
	var builder strings.Builder
	if err := writeValue(&builder, root, ""); err != nil {
		return "", err
	}
	builder.WriteString("\n")
	return builder.String(), nil
}

func writeValue(builder *strings.Builder, n *node, indent string) error {
	switch n.kind {
	case kindObject:
		if len(n.members) == 0 {
			builder.WriteString("{}")
			return nil
		}
		builder.WriteString("{\n")
		for i, m := range n.members {
			builder.WriteString(indent + indentUnit)
			if err := writeScalar(builder, m.key); err != nil {
				return err
			}
			builder.WriteString(": ")
			if err := writeValue(builder, m.value, indent+indentUnit); err != nil {
				return err
			}
			if i < len(n.members)-1 {
				builder.WriteString(",")
			}
			builder.WriteString("\n")
		}
		builder.WriteString(indent + "}")
	case kindArray:
		if len(n.items) == 0 {
			builder.WriteString("[]")
			return nil
		}
		builder.WriteString("[\n")
		for i, item := range n.items {
			builder.WriteString(indent + indentUnit)
			if err := writeValue(builder, item, indent+indentUnit); err != nil {
				return err
			}
			if i < len(n.items)-1 {
				builder.WriteString(",")
			}
			builder.WriteString("\n")
		}
		builder.WriteString(indent + "]")
	default:
		return writeScalar(builder, n.scalar)
	}
	return nil
}

func writeScalar(builder *strings.Builder, value any) error {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	builder.Write(bytes.TrimRight(buffer.Bytes(), "\n"))
	return nil
}

// dependencyProperties returns the direct members of every object-valued
// "dependencies" property found anywhere below root, in document order.
func dependencyProperties(root *node) []*member {
	var found []*member
	var walk func(n *node)
	walk = func(n *node) {
		switch n.kind {
		case kindObject:
			for _, m := range n.members {
				if m.key == "dependencies" && m.value.kind == kindObject {
					found = append(found, m.value.members...)
				}
				walk(m.value)
			}
		case kindArray:
			for _, item := range n.items {
				walk(item)
			}
		case kindScalar:
		}
	}
	walk(root)
	return found
}
