package libvirt

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"libvirt.org/go/libvirtxml"

	"github.com/jbweber/verne/internal/resource"
)

// GenerateInterfaceXML renders a host interface brought up on boot.
// Supported kinds are "ethernet" and "bridge".
func GenerateInterfaceXML(i resource.Interface) (string, error) {
	def := &libvirtxml.Interface{
		Name: i.Name,
		Start: &libvirtxml.InterfaceStart{
			Mode: "onboot",
		},
		MAC: &libvirtxml.InterfaceMAC{
			Address: i.MAC,
		},
	}

	switch i.Type {
	case "ethernet":
	case "bridge":
		def.Bridge = &libvirtxml.InterfaceBridge{
			STP: "off",
		}
	default:
		return "", fmt.Errorf("unsupported interface kind %q", i.Type)
	}

	xml, err := def.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to marshal interface XML: %w", err)
	}
	return xml, nil
}

// Host interfaces only exist as persistent definitions, so transient runs
// skip them.

func (d *Driver) createInterface(ctx context.Context, log logrus.FieldLogger, i resource.Interface) {
	if d.transient {
		log.Warn("Interfaces are not supported in transient mode, skipping")
		return
	}

	xml, err := GenerateInterfaceXML(i)
	if err != nil {
		failed(log, "Failed to generate interface XML", err)
		return
	}
	log.WithField("xml", xml).Debug("Generated interface XML")

	iface, err := d.lv.InterfaceDefineXML(xml, 0)
	if err != nil {
		failed(log, "Failed to define interface", err)
		return
	}

	if err := d.lv.InterfaceCreate(iface, 0); err != nil {
		failed(log, "Failed to start interface", err)
		return
	}
	log.Info("Interface started")
}

func (d *Driver) cleanInterface(ctx context.Context, log logrus.FieldLogger, i resource.Interface) {
	if d.transient {
		log.Warn("Interfaces are not supported in transient mode, skipping")
		return
	}

	iface, err := d.lv.InterfaceLookupByName(i.Name)
	if err != nil {
		cleanFailed(log, "Failed to look up interface", err)
		return
	}

	if err := d.lv.InterfaceDestroy(iface, 0); err != nil {
		log.WithError(err).Debug("Destroy failed, interface may not be active")
	}

	if err := d.lv.InterfaceUndefine(iface); err != nil {
		failed(log, "Failed to undefine interface", err)
		return
	}
	log.Info("Interface cleaned")
}
