// Package parser turns template files into ordered resource sequences.
//
// The YAML template is a mapping from resource kind to a list of entries:
//
//	guest:
//	  - name: web
//	    memory: 524288
//	    vcpus: 2
//	network:
//	  - name: lab
//	    bridge: virbr10
//	    ip_address: 10.10.0.1
//	    network: 255.255.255.0
//	interface:
//	  - name: eth1
//	    kind: ethernet
//	    mac: "52:54:00:aa:bb:cc"
//	storage_pool:
//	  - name: images
//	    path: /var/lib/verne/images
//
// Kinds and entries are returned in document order. Unknown kinds are
// skipped with a warning.
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/verne/internal/resource"
)

// ErrEmptyTemplate is returned when a template contains no document.
var ErrEmptyTemplate = errors.New("template is empty")

// YAMLParser reads a YAML template from disk. Each call to Parse re-reads the
// file.
type YAMLParser struct {
	path string
	log  logrus.FieldLogger
}

// NewYAML creates a parser for the template at path.
func NewYAML(path string, log logrus.FieldLogger) *YAMLParser {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &YAMLParser{path: path, log: log}
}

// Parse reads and parses the template.
func (p *YAMLParser) Parse(ctx context.Context) ([]resource.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", p.path, err)
	}

	resources, err := ParseYAML(data, p.log.WithField("template", p.path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.path, err)
	}
	return resources, nil
}

// ParseYAML parses template bytes.
func ParseYAML(data []byte, log logrus.FieldLogger) ([]resource.Resource, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyTemplate
	}
	root := doc.Content[0]
	if isNull(root) {
		return nil, ErrEmptyTemplate
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping of resource kinds", root.Line)
	}

	var resources []resource.Resource
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		kind := resource.Kind(key.Value)

		decode, ok := decoders[kind]
		if !ok {
			log.WithFields(logrus.Fields{
				"kind": key.Value,
				"line": key.Line,
			}).Warn("Unrecognized resource kind, skipping")
			continue
		}

		parsed, err := parseKind(kind, value, decode, log)
		if err != nil {
			return nil, err
		}
		resources = append(resources, parsed...)
	}

	return resources, nil
}

// parseKind decodes every entry listed under one kind.
func parseKind(kind resource.Kind, value *yaml.Node, decode decoder, log logrus.FieldLogger) ([]resource.Resource, error) {
	if isNull(value) {
		return nil, nil
	}
	if value.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s: line %d: expected a list of entries", kind, value.Line)
	}

	seen := make(map[string]bool, len(value.Content))
	out := make([]resource.Resource, 0, len(value.Content))
	for i, entry := range value.Content {
		if entry.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%s[%d]: line %d: expected a mapping", kind, i, entry.Line)
		}

		r, err := decode(entry)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%s[%d]: validation failed: %w", kind, i, err)
		}

		if seen[r.GetName()] {
			log.WithFields(logrus.Fields{
				"kind": kind,
				"name": r.GetName(),
			}).Warn("Duplicate resource name")
		}
		seen[r.GetName()] = true

		out = append(out, r)
	}
	return out, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}
