// Package storage manages libvirt storage pools for verne templates.
//
// Every storage_pool resource maps to a directory-backed ("dir") pool whose
// target is the resource path. Pools are created in one of two modes:
//
//   - Transient: StoragePoolCreateXML with the build flag. The pool exists
//     until it is destroyed or libvirtd restarts.
//   - Persistent: StoragePoolDefineXML, then build and start. Deletion also
//     undefines the pool.
//
// On the qemu driver the pool directory is owned by the account guests run
// as. LookupQEMUOwner resolves it from /etc/libvirt/qemu.conf.
//
// Consumer-Side Interface:
//
// The LibvirtClient interface lists only the pool operations this package
// needs; *libvirt.Libvirt from go-libvirt satisfies it. Errors returned by
// the client are wrapped with %w so callers can still inspect the libvirt
// error code (e.g. to detect a missing pool).
//
// Example usage:
//
//	mgr := storage.NewManager(client.Libvirt(), storage.WithOwner(owner))
//
//	pool := resource.StoragePool{Name: "images", Path: "/srv/images"}
//	if err := mgr.CreatePool(ctx, pool, false); err != nil {
//	    return err
//	}
//
//	if err := mgr.DeletePool(ctx, "images", false); err != nil {
//	    return err
//	}
package storage
