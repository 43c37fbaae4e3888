package storage

import (
	"github.com/digitalocean/go-libvirt"
)

// LibvirtClient is the interface for libvirt operations.
// This allows for dependency injection and testing.
type LibvirtClient interface {
	StoragePoolLookupByName(Name string) (libvirt.StoragePool, error)
	StoragePoolCreateXML(XML string, Flags libvirt.StoragePoolCreateFlags) (libvirt.StoragePool, error)
	StoragePoolDefineXML(XML string, Flags uint32) (libvirt.StoragePool, error)
	StoragePoolBuild(Pool libvirt.StoragePool, Flags libvirt.StoragePoolBuildFlags) error
	StoragePoolCreate(Pool libvirt.StoragePool, Flags libvirt.StoragePoolCreateFlags) error
	StoragePoolGetInfo(Pool libvirt.StoragePool) (rState uint8, rCapacity uint64, rAllocation uint64, rAvailable uint64, err error)
	StoragePoolDestroy(Pool libvirt.StoragePool) error
	StoragePoolUndefine(Pool libvirt.StoragePool) error
}

// Manager creates and deletes storage pools.
type Manager struct {
	client LibvirtClient
	owner  *Owner
}

// Option configures a Manager.
type Option func(*Manager)

// WithOwner sets the owner of pool target directories. Without it libvirt
// picks the owner.
func WithOwner(owner Owner) Option {
	return func(m *Manager) {
		m.owner = &owner
	}
}

// NewManager creates a new storage manager.
func NewManager(client LibvirtClient, opts ...Option) *Manager {
	m := &Manager{
		client: client,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
