// Package libvirt is the reference driver: it realizes verne resources
// against a libvirt daemon through github.com/digitalocean/go-libvirt.
//
// Connection Management:
//
// Connect speaks the libvirt RPC protocol directly, over the local Unix
// socket or a plain TCP listener:
//
//	client, err := libvirt.Connect("qemu:///system", 5*time.Second)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Supported URIs are driver:///path, driver+unix:///path[?socket=...] and
// driver+tcp://host[:port]/path. Other transports return
// ErrUnsupportedTransport.
//
// Driver:
//
// NewDriver connects, asks the daemon which hypervisor it manages and
// returns a Driver. Create and Clean never return errors; backend failures
// are logged per resource so a batch always runs to completion:
//
//	d, err := libvirt.NewDriver(ctx, libvirt.Options{URI: uri}, log)
//	if err != nil {
//	    return err
//	}
//	d.Create(ctx, resource.Guest{Name: "web", Memory: 524288, VCPUs: 2})
//
// In transient mode objects are created and started in one call and
// vanish when stopped. In persistent mode they are defined first, and
// Clean undefines them after stopping.
//
// Consumer-Side Interfaces:
//
// The driver depends on libvirtClient and session, both satisfied by the
// concrete go-libvirt and Client types. Tests inject in-memory fakes
// through newDriver.
package libvirt
