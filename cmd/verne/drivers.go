package main

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/verne/internal/config"
	"github.com/jbweber/verne/internal/libvirt"
	"github.com/jbweber/verne/internal/verne"
)

// driverFactory connects a driver using the resolved options.
type driverFactory func(ctx context.Context, opts config.Options, log logrus.FieldLogger) (verne.Driver, error)

var drivers = map[string]driverFactory{
	"libvirt": newLibvirtDriver,
}

func newLibvirtDriver(ctx context.Context, opts config.Options, log logrus.FieldLogger) (verne.Driver, error) {
	d, err := libvirt.NewDriver(ctx, libvirt.Options{
		URI:       opts.URI,
		Transient: opts.Transient,
		Timeout:   opts.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func driverNames(drivers map[string]driverFactory) []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
