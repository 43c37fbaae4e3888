package libvirt

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/verne/internal/resource"
)

func (d *Driver) createPool(ctx context.Context, log logrus.FieldLogger, pool resource.StoragePool) {
	if err := d.pools.CreatePool(ctx, pool, d.transient); err != nil {
		failed(log, "Failed to create storage pool", err)
		return
	}
	log.Info("Storage pool started")
}

func (d *Driver) cleanPool(ctx context.Context, log logrus.FieldLogger, pool resource.StoragePool) {
	if err := d.pools.DeletePool(ctx, pool.Name, d.transient); err != nil {
		cleanFailed(log, "Failed to delete storage pool", err)
		return
	}
	log.Info("Storage pool cleaned")
}
