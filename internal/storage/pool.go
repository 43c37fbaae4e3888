package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/digitalocean/go-libvirt"
	libvirtxml "libvirt.org/go/libvirtxml"

	"github.com/jbweber/verne/internal/resource"
)

// poolMode is the permission mode of pool target directories.
const poolMode = "0755"

// CreatePool creates the storage pool described by pool.
//
// A transient pool is created and built in one call. A persistent pool is
// defined, built and started; if build or start fails the definition is
// removed again.
func (m *Manager) CreatePool(ctx context.Context, pool resource.StoragePool, transient bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	poolXML, err := m.PoolXML(pool)
	if err != nil {
		return fmt.Errorf("failed to generate pool XML: %w", err)
	}

	if transient {
		if _, err := m.client.StoragePoolCreateXML(poolXML, libvirt.StoragePoolCreateWithBuild); err != nil {
			return fmt.Errorf("failed to create transient pool %s: %w", pool.Name, err)
		}
		return nil
	}

	// Define the pool
	p, err := m.client.StoragePoolDefineXML(poolXML, 0)
	if err != nil {
		return fmt.Errorf("failed to define pool %s: %w", pool.Name, err)
	}

	// Build the pool (creates the target directory)
	if err := m.client.StoragePoolBuild(p, 0); err != nil {
		_ = m.client.StoragePoolUndefine(p)
		return fmt.Errorf("failed to build pool %s: %w", pool.Name, err)
	}

	// Start the pool
	if err := m.client.StoragePoolCreate(p, 0); err != nil {
		_ = m.client.StoragePoolUndefine(p)
		return fmt.Errorf("failed to start pool %s: %w", pool.Name, err)
	}

	return nil
}

// DeletePool stops the named pool if it is running and, unless transient,
// undefines it. The pool directory and its contents are left on disk.
func (m *Manager) DeletePool(ctx context.Context, name string, transient bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := m.client.StoragePoolLookupByName(name)
	if err != nil {
		return fmt.Errorf("failed to look up pool %s: %w", name, err)
	}

	// Stop the pool if it's running
	state, _, _, _, err := m.client.StoragePoolGetInfo(p)
	if err != nil {
		return fmt.Errorf("failed to get pool info for %s: %w", name, err)
	}

	if libvirt.StoragePoolState(state) == libvirt.StoragePoolRunning {
		if err := m.client.StoragePoolDestroy(p); err != nil {
			return fmt.Errorf("failed to stop pool %s: %w", name, err)
		}
	}

	if transient {
		return nil
	}

	if err := m.client.StoragePoolUndefine(p); err != nil {
		return fmt.Errorf("failed to undefine pool %s: %w", name, err)
	}

	return nil
}

// PoolXML generates XML for a directory-based storage pool.
func (m *Manager) PoolXML(pool resource.StoragePool) (string, error) {
	perms := &libvirtxml.StoragePoolTargetPermissions{
		Mode: poolMode,
	}
	if m.owner != nil {
		perms.Owner = m.owner.UID
		perms.Group = m.owner.GID
	}

	def := &libvirtxml.StoragePool{
		Type: "dir",
		Name: pool.Name,
		Target: &libvirtxml.StoragePoolTarget{
			Path:        pool.Path,
			Permissions: perms,
		},
	}

	xmlStr, err := def.Marshal()
	if err != nil {
		return "", err
	}

	// Clean up the XML: remove standalone attribute
	xmlStr = strings.TrimPrefix(xmlStr, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>")
	xmlStr = strings.TrimSpace(xmlStr)

	return xmlStr, nil
}
