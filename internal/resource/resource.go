// Package resource defines the provisionable entities verne understands.
//
// Resource is a closed union: the only implementations are the variant types
// declared in this package (Guest, Network, Interface, StoragePool). Parsers
// construct them, drivers inspect them with a type switch and must handle an
// unknown variant through their default case.
package resource

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
)

// Kind identifies a resource variant. The values double as the top-level
// keys of a template.
type Kind string

const (
	KindGuest       Kind = "guest"
	KindNetwork     Kind = "network"
	KindInterface   Kind = "interface"
	KindStoragePool Kind = "storage_pool"
)

// Resource is a declarative description of one provisionable entity.
type Resource interface {
	// Kind returns the variant tag.
	Kind() Kind

	// GetName returns the name drivers use to find the live object.
	GetName() string

	// Validate checks the variant's invariants.
	Validate() error

	String() string

	isResource()
}

// Guest is a virtual machine or container domain.
type Guest struct {
	Name   string
	Memory uint64 // KiB
	VCPUs  uint32
}

func (Guest) Kind() Kind { return KindGuest }
func (g Guest) GetName() string { return g.Name }
func (Guest) isResource() {}

func (g Guest) String() string {
	return fmt.Sprintf("guest %q (memory=%dKiB vcpus=%d)", g.Name, g.Memory, g.VCPUs)
}

// Validate checks that the guest has a name and positive sizing.
func (g Guest) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("name is required")
	}
	if g.Memory == 0 {
		return fmt.Errorf("memory must be greater than 0")
	}
	if g.VCPUs == 0 {
		return fmt.Errorf("vcpus must be greater than 0")
	}
	return nil
}

// Network is a virtual network backed by a host bridge.
type Network struct {
	Name      string
	Bridge    string
	IPAddress string
	// Network is the netmask ("255.255.255.0"), prefix length ("24", "/24")
	// or CIDR ("192.168.10.0/24") of the network.
	Network string
}

func (Network) Kind() Kind { return KindNetwork }
func (n Network) GetName() string { return n.Name }
func (Network) isResource() {}

func (n Network) String() string {
	return fmt.Sprintf("network %q (bridge=%s ip=%s network=%s)", n.Name, n.Bridge, n.IPAddress, n.Network)
}

// Validate checks that all network fields are present and well formed.
func (n Network) Validate() error {
	if n.Name == "" {
		return fmt.Errorf("name is required")
	}
	if n.Bridge == "" {
		return fmt.Errorf("bridge is required")
	}
	if net.ParseIP(n.IPAddress) == nil {
		return fmt.Errorf("ip_address %q is not a valid IP address", n.IPAddress)
	}
	if _, _, err := n.Mask(); err != nil {
		return err
	}
	return nil
}

// Mask interprets the Network field. It returns either a dotted netmask or a
// prefix length; exactly one of the two is set on success.
func (n Network) Mask() (netmask string, prefix uint, err error) {
	value := strings.TrimSpace(n.Network)
	if value == "" {
		return "", 0, fmt.Errorf("network is required")
	}

	if ip := net.ParseIP(value); ip != nil {
		if ip.To4() == nil {
			return "", 0, fmt.Errorf("network %q: netmask must be IPv4, use a prefix length for IPv6", value)
		}
		return value, 0, nil
	}

	if _, ipNet, cidrErr := net.ParseCIDR(value); cidrErr == nil {
		ones, _ := ipNet.Mask.Size()
		return "", uint(ones), nil
	}

	bits, convErr := strconv.ParseUint(strings.TrimPrefix(value, "/"), 10, 8)
	if convErr != nil || bits == 0 || bits > 128 {
		return "", 0, fmt.Errorf("network %q is not a netmask, prefix length or CIDR", value)
	}
	return "", uint(bits), nil
}

// Interface is a host network interface managed by the backend.
type Interface struct {
	Name string
	// Type is the interface type ("ethernet", "bridge"), declared as
	// "kind" in templates.
	Type string
	MAC  string
}

func (Interface) Kind() Kind { return KindInterface }
func (i Interface) GetName() string { return i.Name }
func (Interface) isResource() {}

func (i Interface) String() string {
	return fmt.Sprintf("interface %q (kind=%s mac=%s)", i.Name, i.Type, i.MAC)
}

// Validate checks that the interface has a name, a type and a valid MAC.
func (i Interface) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("name is required")
	}
	if i.Type == "" {
		return fmt.Errorf("kind is required")
	}
	if _, err := net.ParseMAC(i.MAC); err != nil {
		return fmt.Errorf("mac %q is not a valid MAC address", i.MAC)
	}
	return nil
}

// StoragePool is a directory-backed storage pool.
type StoragePool struct {
	Name string
	Path string
}

func (StoragePool) Kind() Kind { return KindStoragePool }
func (p StoragePool) GetName() string { return p.Name }
func (StoragePool) isResource() {}

func (p StoragePool) String() string {
	return fmt.Sprintf("storage pool %q (path=%s)", p.Name, p.Path)
}

// Validate checks that the pool has a name and an absolute path.
func (p StoragePool) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Path == "" {
		return fmt.Errorf("path is required")
	}
	if !filepath.IsAbs(p.Path) {
		return fmt.Errorf("path %q must be absolute", p.Path)
	}
	return nil
}
