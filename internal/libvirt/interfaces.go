package libvirt

import (
	"github.com/digitalocean/go-libvirt"

	"github.com/jbweber/verne/internal/storage"
)

// libvirtClient defines the libvirt operations the driver needs.
// This wraps operations from *libvirt.Libvirt to allow for testing.
//
// In production, this is satisfied by *libvirt.Libvirt directly.
// In tests, this is satisfied by mock implementations.
type libvirtClient interface {
	storage.LibvirtClient

	// DomainCreateXML creates and starts a transient domain
	DomainCreateXML(XMLDesc string, Flags libvirt.DomainCreateFlags) (libvirt.Domain, error)
	// DomainDefineXML defines a persistent domain from XML
	DomainDefineXML(XML string) (libvirt.Domain, error)
	// DomainCreate starts a defined domain
	DomainCreate(Dom libvirt.Domain) error
	DomainLookupByName(Name string) (libvirt.Domain, error)
	// DomainDestroy force-stops a domain
	DomainDestroy(Dom libvirt.Domain) error
	DomainUndefine(Dom libvirt.Domain) error

	NetworkCreateXML(XML string) (libvirt.Network, error)
	NetworkDefineXML(XML string) (libvirt.Network, error)
	NetworkCreate(Net libvirt.Network) error
	NetworkLookupByName(Name string) (libvirt.Network, error)
	NetworkDestroy(Net libvirt.Network) error
	NetworkUndefine(Net libvirt.Network) error

	InterfaceDefineXML(XML string, Flags uint32) (libvirt.Interface, error)
	InterfaceCreate(Iface libvirt.Interface, Flags uint32) error
	InterfaceLookupByName(Name string) (libvirt.Interface, error)
	InterfaceDestroy(Iface libvirt.Interface, Flags uint32) error
	InterfaceUndefine(Iface libvirt.Interface) error
}

// session is the connection lifecycle the driver exposes through Open and
// Close. *Client satisfies it.
type session interface {
	Ping() error
	Close() error
}
