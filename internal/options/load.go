package options

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads an option tree from a YAML document. JSON documents are valid
// YAML and load the same way. An empty document yields an empty tree.
func Load(r io.Reader) (Tree, error) {
	var tree Tree
	if err := yaml.NewDecoder(r).Decode(&tree); err != nil {
		if err == io.EOF {
			return Tree{}, nil
		}
		return nil, fmt.Errorf("decode options: %w", err)
	}
	if tree == nil {
		tree = Tree{}
	}
	return tree, nil
}

// LoadFile reads an option tree from a file.
func LoadFile(path string) (Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open options: %w", err)
	}
	defer f.Close()
	return Load(f)
}
