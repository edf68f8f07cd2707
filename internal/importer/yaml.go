package importer

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/dialname/internal/models"
)

// importYAML accepts either a bare list of contacts or a document with a
// top-level "contacts" list.
func importYAML(content []byte) ([]*models.ContactInput, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	var out []*models.ContactInput
	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&out); err != nil {
			return nil, fmt.Errorf("decode contacts: %w", err)
		}
	case yaml.MappingNode:
		var wrapped struct {
			Contacts []*models.ContactInput `yaml:"contacts"`
		}
		if err := doc.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("decode contacts: %w", err)
		}
		out = wrapped.Contacts
	default:
		return nil, fmt.Errorf("YAML contacts must be a list or a mapping with a contacts key")
	}
	return out, nil
}
