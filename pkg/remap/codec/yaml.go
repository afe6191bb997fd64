package codec

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/remaplang/remap/pkg/remap/document"
)

// YAML goes through the yaml.Node API instead of plain Unmarshal for the
// same reason JSON is token-based: mapping key order must survive.

func decodeYAML(r io.Reader) (document.Value, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return document.NULL, nil
		}
		return nil, err
	}
	node := &root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return document.NULL, nil
		}
		node = node.Content[0]
	}
	return yamlNodeToValue(node)
}

func yamlNodeToValue(node *yaml.Node) (document.Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return yamlScalarToValue(node)
	case yaml.SequenceNode:
		arr := &document.Array{}
		for _, child := range node.Content {
			v, err := yamlNodeToValue(child)
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, v)
		}
		return arr, nil
	case yaml.MappingNode:
		m := document.NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			v, err := yamlNodeToValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		return m, nil
	case yaml.AliasNode:
		return yamlNodeToValue(node.Alias)
	}
	return nil, fmt.Errorf("unsupported YAML node kind %d at line %d", node.Kind, node.Line)
}

func yamlScalarToValue(node *yaml.Node) (document.Value, error) {
	switch node.Tag {
	case "!!null":
		return document.NULL, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return document.Bool(b), nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, err
		}
		return &document.Integer{Value: n}, nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return &document.Float{Value: f}, nil
	default:
		return &document.String{Value: node.Value}, nil
	}
}

func encodeYAML(w io.Writer, v document.Value) error {
	node, err := valueToYAMLNode(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

func valueToYAMLNode(v document.Value) (*yaml.Node, error) {
	switch v := v.(type) {
	case *document.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case *document.Boolean:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Value)}, nil
	case *document.Integer:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.Value, 10)}, nil
	case *document.Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v.Value, 'g', -1, 64)}, nil
	case *document.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Value}, nil
	case *document.Bytes:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(v.Value)}, nil
	case *document.Array:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, elem := range v.Elements {
			child, err := valueToYAMLNode(elem)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case *document.Map:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, key := range v.Keys() {
			val, _ := v.Get(key)
			child, err := valueToYAMLNode(val)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				child)
		}
		return node, nil
	}
	return nil, fmt.Errorf("cannot encode %s as YAML", v.Type())
}
