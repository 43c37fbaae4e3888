package libvirt

import (
	"context"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"libvirt.org/go/libvirtxml"

	"github.com/jbweber/verne/internal/resource"
)

// GenerateNetworkXML renders an isolated network: a bridge with one host
// address and no forwarding.
func GenerateNetworkXML(n resource.Network) (string, error) {
	netmask, prefix, err := n.Mask()
	if err != nil {
		return "", err
	}

	ip := libvirtxml.NetworkIP{
		Address: n.IPAddress,
		Netmask: netmask,
		Prefix:  prefix,
	}
	if parsed := net.ParseIP(n.IPAddress); parsed != nil && parsed.To4() == nil {
		ip.Family = "ipv6"
	}

	meta, err := metadataXML(n)
	if err != nil {
		return "", err
	}

	def := &libvirtxml.Network{
		Name: n.Name,
		Metadata: &libvirtxml.NetworkMetadata{
			XML: meta,
		},
		Bridge: &libvirtxml.NetworkBridge{
			Name: n.Bridge,
		},
		IPs: []libvirtxml.NetworkIP{ip},
	}

	xml, err := def.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to marshal network XML: %w", err)
	}
	return xml, nil
}

func (d *Driver) createNetwork(ctx context.Context, log logrus.FieldLogger, n resource.Network) {
	xml, err := GenerateNetworkXML(n)
	if err != nil {
		failed(log, "Failed to generate network XML", err)
		return
	}
	log.WithField("xml", xml).Debug("Generated network XML")

	if d.transient {
		if _, err := d.lv.NetworkCreateXML(xml); err != nil {
			failed(log, "Failed to create transient network", err)
			return
		}
		log.Info("Network started")
		return
	}

	network, err := d.lv.NetworkDefineXML(xml)
	if err != nil {
		failed(log, "Failed to define network", err)
		return
	}

	if err := d.lv.NetworkCreate(network); err != nil {
		failed(log, "Failed to start network", err)
		return
	}
	log.Info("Network started")
}

func (d *Driver) cleanNetwork(ctx context.Context, log logrus.FieldLogger, n resource.Network) {
	network, err := d.lv.NetworkLookupByName(n.Name)
	if err != nil {
		cleanFailed(log, "Failed to look up network", err)
		return
	}

	destroyErr := d.lv.NetworkDestroy(network)
	if destroyErr != nil {
		if d.transient {
			failed(log, "Failed to destroy network", destroyErr)
			return
		}
		log.WithError(destroyErr).Debug("Destroy failed, network may not be active")
	}

	if !d.transient {
		if err := d.lv.NetworkUndefine(network); err != nil {
			failed(log, "Failed to undefine network", err)
			return
		}
	}
	log.Info("Network cleaned")
}
