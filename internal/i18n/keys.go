package i18n

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNotATree = errors.New("translation document is not an object")

// ParseTree decodes a JSON (or YAML) translation document into a node tree
// that keeps the document's key order.
func ParseTree(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse translations: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotATree
	}
	return root, nil
}

// CollectKeys lists the dot-joined path of every string leaf in document
// order. Keys starting with an underscore are skipped together with
// everything below them.
func CollectKeys(tree *yaml.Node) []string {
	var keys []string
	walk(tree, nil, true, func(path []string, _ string) {
		keys = append(keys, strings.Join(path, "."))
	})
	return keys
}

// CollectKeysFromJSON parses data and collects its keys.
func CollectKeysFromJSON(data []byte) ([]string, error) {
	tree, err := ParseTree(data)
	if err != nil {
		return nil, err
	}
	return CollectKeys(tree), nil
}

// MissingKeys returns the keys of want that have lacks, in want's order.
func MissingKeys(want, have []string) []string {
	present := make(map[string]struct{}, len(have))
	for _, key := range have {
		present[key] = struct{}{}
	}

	var missing []string
	for _, key := range want {
		if _, ok := present[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

func walk(node *yaml.Node, path []string, skipPrivate bool, leaf func(path []string, value string)) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if skipPrivate && strings.HasPrefix(key, "_") {
			continue
		}
		value := node.Content[i+1]
		next := append(path[:len(path):len(path)], key)

		switch value.Kind {
		case yaml.ScalarNode:
			if value.ShortTag() == "!!str" {
				leaf(next, value.Value)
			}
		case yaml.MappingNode:
			walk(value, next, skipPrivate, leaf)
		}
	}
}
