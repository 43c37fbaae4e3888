package libvirt

import (
	"errors"
	"fmt"

	"libvirt.org/go/libvirtxml"

	"github.com/jbweber/verne/internal/resource"
)

// ErrUnsupportedKind is returned when no guest dialect exists for the
// connected hypervisor.
var ErrUnsupportedKind = errors.New("unsupported hypervisor kind")

// GenerateDomainXML renders guest as domain XML for the hypervisor kind
// reported by the connection.
//
// qemu, kvm and test get a full virtualization guest (hvm with ACPI and
// APIC). lxc gets a container running /bin/sh with a pty console.
func GenerateDomainXML(kind string, guest resource.Guest) (string, error) {
	meta, err := metadataXML(guest)
	if err != nil {
		return "", err
	}

	domain := &libvirtxml.Domain{
		Type: kind,
		Name: guest.Name,
		UUID: guestUUID(guest.Name),
		Metadata: &libvirtxml.DomainMetadata{
			XML: meta,
		},
		Memory: &libvirtxml.DomainMemory{
			Value: uint(guest.Memory),
			Unit:  "KiB",
		},
		VCPU: &libvirtxml.DomainVCPU{
			Value: uint(guest.VCPUs),
		},
	}

	switch kind {
	case "qemu", "kvm", "test":
		domain.OS = &libvirtxml.DomainOS{
			Type: &libvirtxml.DomainOSType{
				Type: "hvm",
			},
		}
		domain.Features = &libvirtxml.DomainFeatureList{
			ACPI: &libvirtxml.DomainFeature{},
			APIC: &libvirtxml.DomainFeatureAPIC{},
		}
	case "lxc":
		domain.OS = &libvirtxml.DomainOS{
			Type: &libvirtxml.DomainOSType{
				Type: "exe",
			},
			Init: "/bin/sh",
		}
		domain.Devices = &libvirtxml.DomainDeviceList{
			Consoles: []libvirtxml.DomainConsole{
				{
					Source: &libvirtxml.DomainChardevSource{
						Pty: &libvirtxml.DomainChardevSourcePty{},
					},
				},
			},
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	xml, err := domain.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to marshal domain XML: %w", err)
	}

	return xml, nil
}
