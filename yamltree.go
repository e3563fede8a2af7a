package sigma

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// valueFromYAMLNode converts a decoded yaml.Node into a Value, preserving
// mapping key order — Sigma selection declaration order matters for
// diagnostics and for a deterministic `them`/glob-expansion enumeration.
func valueFromYAMLNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return valueFromYAMLNode(node.Content[0])

	case yaml.MappingNode:
		om := NewOrderedMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			v, err := valueFromYAMLNode(valNode)
			if err != nil {
				return Value{}, err
			}
			om.Set(keyNode.Value, v)
		}
		return Map(om), nil

	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := valueFromYAMLNode(child)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Seq(items), nil

	case yaml.ScalarNode:
		return scalarValueFromYAML(node), nil

	case yaml.AliasNode:
		return valueFromYAMLNode(node.Alias)

	default:
		return Null(), nil
	}
}

func scalarValueFromYAML(node *yaml.Node) Value {
	switch node.Tag {
	case "!!null":
		return Null()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			return Bool(b)
		}
	case "!!int":
		if i, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
			return Int(i)
		}
		if u, err := strconv.ParseUint(node.Value, 10, 64); err == nil {
			return UInt(u)
		}
	case "!!float":
		var f float64
		if err := node.Decode(&f); err == nil {
			return Float(f)
		}
	}
	// !!str and anything unrecognized decodes as a string.
	return Str(node.Value)
}
