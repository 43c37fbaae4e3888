package libvirt

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/verne/internal/resource"
)

// createGuest starts guest. Transient guests are created and started in one
// call; persistent guests are defined first and then started.
func (d *Driver) createGuest(ctx context.Context, log logrus.FieldLogger, guest resource.Guest) {
	xml, err := GenerateDomainXML(d.kind, guest)
	if err != nil {
		if errors.Is(err, ErrUnsupportedKind) {
			log.WithField("hypervisor", d.kind).Error("Unsupported hypervisor kind, skipping guest")
			return
		}
		failed(log, "Failed to generate domain XML", err)
		return
	}
	log.WithField("xml", xml).Debug("Generated domain XML")

	if d.transient {
		if _, err := d.lv.DomainCreateXML(xml, 0); err != nil {
			failed(log, "Failed to create transient domain", err)
			return
		}
		log.Info("Guest started")
		return
	}

	dom, err := d.lv.DomainDefineXML(xml)
	if err != nil {
		failed(log, "Failed to define domain", err)
		return
	}
	log.Debug("Domain defined, starting")

	if err := d.lv.DomainCreate(dom); err != nil {
		failed(log, "Failed to start domain", err)
		return
	}
	log.Info("Guest started")
}

// cleanGuest destroys the named guest. Persistent guests are undefined even
// when destroy fails, since a defined guest need not be running.
func (d *Driver) cleanGuest(ctx context.Context, log logrus.FieldLogger, guest resource.Guest) {
	dom, err := d.lv.DomainLookupByName(guest.Name)
	if err != nil {
		cleanFailed(log, "Failed to look up domain", err)
		return
	}

	destroyErr := d.lv.DomainDestroy(dom)
	if destroyErr != nil {
		if d.transient {
			failed(log, "Failed to destroy domain", destroyErr)
			return
		}
		log.WithError(destroyErr).Debug("Destroy failed, domain may not be running")
	}

	if !d.transient {
		if err := d.lv.DomainUndefine(dom); err != nil {
			failed(log, "Failed to undefine domain", err)
			return
		}
	}
	log.Info("Guest cleaned")
}
