package libvirt

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/verne/internal/resource"
	"github.com/jbweber/verne/internal/storage"
)

// Options configures a Driver.
type Options struct {
	// URI is the libvirt connection URI. Empty means qemu:///system.
	URI string
	// Transient creates resources that vanish when stopped instead of
	// persistent definitions.
	Transient bool
	// Timeout bounds dialing the daemon. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Driver realizes resources against one libvirt connection.
type Driver struct {
	conn      session
	lv        libvirtClient
	pools     *storage.Manager
	kind      string
	transient bool
	log       logrus.FieldLogger
}

// NewDriver connects to the daemon behind opts.URI and asks it which
// hypervisor it manages. Failing to do either is fatal.
func NewDriver(ctx context.Context, opts Options, log logrus.FieldLogger) (*Driver, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	log.WithField("uri", opts.URI).Debug("Connecting to libvirt")
	client, err := ConnectWithContext(ctx, opts.URI, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to libvirt: %w", err)
	}

	kind, err := client.Kind()
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	var poolOpts []storage.Option
	if kind == "qemu" || kind == "kvm" {
		owner, err := storage.LookupQEMUOwner(storage.DefaultQEMUConf)
		if err != nil {
			log.WithError(err).Debug("Leaving storage pool ownership to libvirt")
		} else {
			poolOpts = append(poolOpts, storage.WithOwner(owner))
		}
	}

	log.WithFields(logrus.Fields{
		"uri":       client.URI(),
		"kind":      kind,
		"transient": opts.Transient,
	}).Debug("Connected to libvirt")

	return newDriver(client, client.Libvirt(), kind, opts.Transient, log, poolOpts...), nil
}

// newDriver creates a driver with injected dependencies.
// This allows for testing by accepting interfaces instead of concrete types.
func newDriver(conn session, lv libvirtClient, kind string, transient bool, log logrus.FieldLogger, poolOpts ...storage.Option) *Driver {
	return &Driver{
		conn:      conn,
		lv:        lv,
		pools:     storage.NewManager(lv, poolOpts...),
		kind:      kind,
		transient: transient,
		log:       log.WithField("driver", "libvirt"),
	}
}

// Kind returns the lowercased hypervisor kind of the connection.
func (d *Driver) Kind() string {
	return d.kind
}

// Open verifies the connection is usable.
func (d *Driver) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.conn.Ping()
}

// Close releases the connection.
func (d *Driver) Close() error {
	return d.conn.Close()
}

// Create realizes r. Failures are logged; the caller is never interrupted.
func (d *Driver) Create(ctx context.Context, r resource.Resource) {
	log := d.resourceLog(r)
	log.Info("Creating resource")

	switch r := r.(type) {
	case resource.Guest:
		d.createGuest(ctx, log, r)
	case resource.Network:
		d.createNetwork(ctx, log, r)
	case resource.Interface:
		d.createInterface(ctx, log, r)
	case resource.StoragePool:
		d.createPool(ctx, log, r)
	default:
		log.Warn("Resource not implemented")
	}
}

// Clean tears r down by name. A resource that does not exist is reported
// as a warning.
func (d *Driver) Clean(ctx context.Context, r resource.Resource) {
	log := d.resourceLog(r)
	log.Info("Cleaning resource")

	switch r := r.(type) {
	case resource.Guest:
		d.cleanGuest(ctx, log, r)
	case resource.Network:
		d.cleanNetwork(ctx, log, r)
	case resource.Interface:
		d.cleanInterface(ctx, log, r)
	case resource.StoragePool:
		d.cleanPool(ctx, log, r)
	default:
		log.Warn("Resource not implemented")
	}
}

func (d *Driver) resourceLog(r resource.Resource) logrus.FieldLogger {
	return d.log.WithFields(logrus.Fields{
		"kind":      r.Kind(),
		"name":      r.GetName(),
		"resource":  r.String(),
		"transient": d.transient,
	})
}

// failed logs a backend rejection.
func failed(log logrus.FieldLogger, msg string, err error) {
	log.WithError(err).WithField("code", errorCode(err)).Error(msg)
}

// cleanFailed logs a teardown error; a missing object is only a warning.
func cleanFailed(log logrus.FieldLogger, msg string, err error) {
	if isNotFound(err) {
		log.WithError(err).Warn("Resource not found, nothing to clean")
		return
	}
	failed(log, msg, err)
}
