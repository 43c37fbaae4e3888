package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/verne/internal/resource"
)

// decoder turns one template entry into a resource.
type decoder func(*yaml.Node) (resource.Resource, error)

var decoders = map[resource.Kind]decoder{
	resource.KindGuest:       decodeGuest,
	resource.KindNetwork:     decodeNetwork,
	resource.KindInterface:   decodeInterface,
	resource.KindStoragePool: decodeStoragePool,
}

// Entry shapes use pointer fields so a missing key is distinguishable from a
// zero value.

type guestEntry struct {
	Name   *string `yaml:"name"`
	Memory *uint64 `yaml:"memory"`
	VCPUs  *uint32 `yaml:"vcpus"`
}

type networkEntry struct {
	Name      *string `yaml:"name"`
	Bridge    *string `yaml:"bridge"`
	IPAddress *string `yaml:"ip_address"`
	Network   *string `yaml:"network"`
}

type interfaceEntry struct {
	Name *string `yaml:"name"`
	Kind *string `yaml:"kind"`
	MAC  *string `yaml:"mac"`
}

type storagePoolEntry struct {
	Name *string `yaml:"name"`
	Path *string `yaml:"path"`
}

func decodeGuest(n *yaml.Node) (resource.Resource, error) {
	var e guestEntry
	if err := n.Decode(&e); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	if err := missing(n, field{"name", e.Name == nil}, field{"memory", e.Memory == nil}, field{"vcpus", e.VCPUs == nil}); err != nil {
		return nil, err
	}
	return resource.Guest{Name: *e.Name, Memory: *e.Memory, VCPUs: *e.VCPUs}, nil
}

func decodeNetwork(n *yaml.Node) (resource.Resource, error) {
	var e networkEntry
	if err := n.Decode(&e); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	if err := missing(n,
		field{"name", e.Name == nil},
		field{"bridge", e.Bridge == nil},
		field{"ip_address", e.IPAddress == nil},
		field{"network", e.Network == nil},
	); err != nil {
		return nil, err
	}
	return resource.Network{
		Name:      *e.Name,
		Bridge:    *e.Bridge,
		IPAddress: *e.IPAddress,
		Network:   *e.Network,
	}, nil
}

func decodeInterface(n *yaml.Node) (resource.Resource, error) {
	var e interfaceEntry
	if err := n.Decode(&e); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	if err := missing(n, field{"name", e.Name == nil}, field{"kind", e.Kind == nil}, field{"mac", e.MAC == nil}); err != nil {
		return nil, err
	}
	return resource.Interface{Name: *e.Name, Type: *e.Kind, MAC: *e.MAC}, nil
}

func decodeStoragePool(n *yaml.Node) (resource.Resource, error) {
	var e storagePoolEntry
	if err := n.Decode(&e); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	if err := missing(n, field{"name", e.Name == nil}, field{"path", e.Path == nil}); err != nil {
		return nil, err
	}
	return resource.StoragePool{Name: *e.Name, Path: *e.Path}, nil
}

type field struct {
	name   string
	absent bool
}

// missing reports the first absent field.
func missing(n *yaml.Node, fields ...field) error {
	for _, f := range fields {
		if f.absent {
			return fmt.Errorf("line %d: missing required field %q", n.Line, f.name)
		}
	}
	return nil
}
