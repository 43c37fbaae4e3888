package libvirt

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/digitalocean/go-libvirt"
	"libvirt.org/go/libvirtxml"
)

// mockObject is a domain, network, interface or pool known to the mock.
type mockObject struct {
	active     bool
	persistent bool
	xml        string
}

// mockLibvirtClient is an in-memory libvirtClient. Objects are keyed by
// name; errs injects a failure for a method name.
type mockLibvirtClient struct {
	mu sync.Mutex

	domains  map[string]*mockObject
	networks map[string]*mockObject
	ifaces   map[string]*mockObject
	pools    map[string]*mockObject

	errs map[string]error

	// Call tracking, "Method:name"
	calls []string
}

func newMockLibvirtClient() *mockLibvirtClient {
	return &mockLibvirtClient{
		domains:  make(map[string]*mockObject),
		networks: make(map[string]*mockObject),
		ifaces:   make(map[string]*mockObject),
		pools:    make(map[string]*mockObject),
		errs:     make(map[string]error),
	}
}

func (m *mockLibvirtClient) record(method, name string) error {
	m.calls = append(m.calls, method+":"+name)
	return m.errs[method]
}

func (m *mockLibvirtClient) called(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if strings.HasPrefix(c, method+":") {
			n++
		}
	}
	return n
}

func notFound(code libvirt.ErrorNumber, what, name string) error {
	return libvirt.Error{Code: uint32(code), Message: fmt.Sprintf("%s not found: %s", what, name)}
}

func unmarshalXML(doc string, v any) error {
	return xml.Unmarshal([]byte(doc), v)
}

func nameOf(doc string) string {
	var probe struct {
		Name     string `xml:"name"`
		NameAttr string `xml:"name,attr"`
	}
	if err := unmarshalXML(doc, &probe); err != nil {
		return ""
	}
	if probe.Name != "" {
		return probe.Name
	}
	return probe.NameAttr
}

// add registers a new object, failing if one with the same name exists.
func add(set map[string]*mockObject, name string, obj *mockObject) error {
	if name == "" {
		return errors.New("invalid XML: missing name")
	}
	if existing, ok := set[name]; ok && (existing.active || existing.persistent) {
		return fmt.Errorf("object already exists: %s", name)
	}
	set[name] = obj
	return nil
}

// stop deactivates an object; transient objects disappear.
func stop(set map[string]*mockObject, name string) error {
	obj := set[name]
	if !obj.active {
		return errors.New("Requested operation is not valid: object is not running")
	}
	obj.active = false
	if !obj.persistent {
		delete(set, name)
	}
	return nil
}

// Domains

func (m *mockLibvirtClient) DomainCreateXML(xml string, flags libvirt.DomainCreateFlags) (libvirt.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := nameOf(xml)
	if err := m.record("DomainCreateXML", name); err != nil {
		return libvirt.Domain{}, err
	}
	if err := add(m.domains, name, &mockObject{active: true, xml: xml}); err != nil {
		return libvirt.Domain{}, err
	}
	return libvirt.Domain{Name: name}, nil
}

func (m *mockLibvirtClient) DomainDefineXML(xml string) (libvirt.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := nameOf(xml)
	if err := m.record("DomainDefineXML", name); err != nil {
		return libvirt.Domain{}, err
	}
	if err := add(m.domains, name, &mockObject{persistent: true, xml: xml}); err != nil {
		return libvirt.Domain{}, err
	}
	return libvirt.Domain{Name: name}, nil
}

func (m *mockLibvirtClient) DomainCreate(dom libvirt.Domain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DomainCreate", dom.Name); err != nil {
		return err
	}
	obj, ok := m.domains[dom.Name]
	if !ok {
		return notFound(libvirt.ErrNoDomain, "domain", dom.Name)
	}
	obj.active = true
	return nil
}

func (m *mockLibvirtClient) DomainLookupByName(name string) (libvirt.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DomainLookupByName", name); err != nil {
		return libvirt.Domain{}, err
	}
	if _, ok := m.domains[name]; !ok {
		return libvirt.Domain{}, notFound(libvirt.ErrNoDomain, "domain", name)
	}
	return libvirt.Domain{Name: name}, nil
}

func (m *mockLibvirtClient) DomainDestroy(dom libvirt.Domain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DomainDestroy", dom.Name); err != nil {
		return err
	}
	if _, ok := m.domains[dom.Name]; !ok {
		return notFound(libvirt.ErrNoDomain, "domain", dom.Name)
	}
	return stop(m.domains, dom.Name)
}

func (m *mockLibvirtClient) DomainUndefine(dom libvirt.Domain) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DomainUndefine", dom.Name); err != nil {
		return err
	}
	obj, ok := m.domains[dom.Name]
	if !ok || !obj.persistent {
		return notFound(libvirt.ErrNoDomain, "domain", dom.Name)
	}
	if obj.active {
		obj.persistent = false
		return nil
	}
	delete(m.domains, dom.Name)
	return nil
}

// Networks

func (m *mockLibvirtClient) NetworkCreateXML(xml string) (libvirt.Network, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := nameOf(xml)
	if err := m.record("NetworkCreateXML", name); err != nil {
		return libvirt.Network{}, err
	}
	if err := add(m.networks, name, &mockObject{active: true, xml: xml}); err != nil {
		return libvirt.Network{}, err
	}
	return libvirt.Network{Name: name}, nil
}

func (m *mockLibvirtClient) NetworkDefineXML(xml string) (libvirt.Network, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := nameOf(xml)
	if err := m.record("NetworkDefineXML", name); err != nil {
		return libvirt.Network{}, err
	}
	if err := add(m.networks, name, &mockObject{persistent: true, xml: xml}); err != nil {
		return libvirt.Network{}, err
	}
	return libvirt.Network{Name: name}, nil
}

func (m *mockLibvirtClient) NetworkCreate(net libvirt.Network) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("NetworkCreate", net.Name); err != nil {
		return err
	}
	obj, ok := m.networks[net.Name]
	if !ok {
		return notFound(libvirt.ErrNoNetwork, "network", net.Name)
	}
	obj.active = true
	return nil
}

func (m *mockLibvirtClient) NetworkLookupByName(name string) (libvirt.Network, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("NetworkLookupByName", name); err != nil {
		return libvirt.Network{}, err
	}
	if _, ok := m.networks[name]; !ok {
		return libvirt.Network{}, notFound(libvirt.ErrNoNetwork, "network", name)
	}
	return libvirt.Network{Name: name}, nil
}

func (m *mockLibvirtClient) NetworkDestroy(net libvirt.Network) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("NetworkDestroy", net.Name); err != nil {
		return err
	}
	if _, ok := m.networks[net.Name]; !ok {
		return notFound(libvirt.ErrNoNetwork, "network", net.Name)
	}
	return stop(m.networks, net.Name)
}

func (m *mockLibvirtClient) NetworkUndefine(net libvirt.Network) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("NetworkUndefine", net.Name); err != nil {
		return err
	}
	obj, ok := m.networks[net.Name]
	if !ok || !obj.persistent {
		return notFound(libvirt.ErrNoNetwork, "network", net.Name)
	}
	if obj.active {
		obj.persistent = false
		return nil
	}
	delete(m.networks, net.Name)
	return nil
}

// Interfaces

func (m *mockLibvirtClient) InterfaceDefineXML(xml string, flags uint32) (libvirt.Interface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := nameOf(xml)
	if err := m.record("InterfaceDefineXML", name); err != nil {
		return libvirt.Interface{}, err
	}
	if err := add(m.ifaces, name, &mockObject{persistent: true, xml: xml}); err != nil {
		return libvirt.Interface{}, err
	}
	return libvirt.Interface{Name: name}, nil
}

func (m *mockLibvirtClient) InterfaceCreate(iface libvirt.Interface, flags uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("InterfaceCreate", iface.Name); err != nil {
		return err
	}
	obj, ok := m.ifaces[iface.Name]
	if !ok {
		return notFound(libvirt.ErrNoInterface, "interface", iface.Name)
	}
	obj.active = true
	return nil
}

func (m *mockLibvirtClient) InterfaceLookupByName(name string) (libvirt.Interface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("InterfaceLookupByName", name); err != nil {
		return libvirt.Interface{}, err
	}
	if _, ok := m.ifaces[name]; !ok {
		return libvirt.Interface{}, notFound(libvirt.ErrNoInterface, "interface", name)
	}
	return libvirt.Interface{Name: name}, nil
}

func (m *mockLibvirtClient) InterfaceDestroy(iface libvirt.Interface, flags uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("InterfaceDestroy", iface.Name); err != nil {
		return err
	}
	if _, ok := m.ifaces[iface.Name]; !ok {
		return notFound(libvirt.ErrNoInterface, "interface", iface.Name)
	}
	return stop(m.ifaces, iface.Name)
}

func (m *mockLibvirtClient) InterfaceUndefine(iface libvirt.Interface) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("InterfaceUndefine", iface.Name); err != nil {
		return err
	}
	if _, ok := m.ifaces[iface.Name]; !ok {
		return notFound(libvirt.ErrNoInterface, "interface", iface.Name)
	}
	delete(m.ifaces, iface.Name)
	return nil
}

// Storage pools

func (m *mockLibvirtClient) StoragePoolLookupByName(name string) (libvirt.StoragePool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("StoragePoolLookupByName", name); err != nil {
		return libvirt.StoragePool{}, err
	}
	if _, ok := m.pools[name]; !ok {
		return libvirt.StoragePool{}, notFound(libvirt.ErrNoStoragePool, "storage pool", name)
	}
	return libvirt.StoragePool{Name: name}, nil
}

func (m *mockLibvirtClient) StoragePoolCreateXML(xml string, flags libvirt.StoragePoolCreateFlags) (libvirt.StoragePool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := nameOf(xml)
	if err := m.record("StoragePoolCreateXML", name); err != nil {
		return libvirt.StoragePool{}, err
	}
	if err := add(m.pools, name, &mockObject{active: true, xml: xml}); err != nil {
		return libvirt.StoragePool{}, err
	}
	return libvirt.StoragePool{Name: name}, nil
}

func (m *mockLibvirtClient) StoragePoolDefineXML(xml string, flags uint32) (libvirt.StoragePool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := nameOf(xml)
	if err := m.record("StoragePoolDefineXML", name); err != nil {
		return libvirt.StoragePool{}, err
	}
	if err := add(m.pools, name, &mockObject{persistent: true, xml: xml}); err != nil {
		return libvirt.StoragePool{}, err
	}
	return libvirt.StoragePool{Name: name}, nil
}

func (m *mockLibvirtClient) StoragePoolBuild(pool libvirt.StoragePool, flags libvirt.StoragePoolBuildFlags) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record("StoragePoolBuild", pool.Name)
}

func (m *mockLibvirtClient) StoragePoolCreate(pool libvirt.StoragePool, flags libvirt.StoragePoolCreateFlags) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("StoragePoolCreate", pool.Name); err != nil {
		return err
	}
	obj, ok := m.pools[pool.Name]
	if !ok {
		return notFound(libvirt.ErrNoStoragePool, "storage pool", pool.Name)
	}
	obj.active = true
	return nil
}

func (m *mockLibvirtClient) StoragePoolGetInfo(pool libvirt.StoragePool) (rState uint8, rCapacity uint64, rAllocation uint64, rAvailable uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("StoragePoolGetInfo", pool.Name); err != nil {
		return 0, 0, 0, 0, err
	}
	obj, ok := m.pools[pool.Name]
	if !ok {
		return 0, 0, 0, 0, notFound(libvirt.ErrNoStoragePool, "storage pool", pool.Name)
	}
	if obj.active {
		return uint8(libvirt.StoragePoolRunning), 0, 0, 0, nil
	}
	return uint8(libvirt.StoragePoolInactive), 0, 0, 0, nil
}

func (m *mockLibvirtClient) StoragePoolDestroy(pool libvirt.StoragePool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("StoragePoolDestroy", pool.Name); err != nil {
		return err
	}
	if _, ok := m.pools[pool.Name]; !ok {
		return notFound(libvirt.ErrNoStoragePool, "storage pool", pool.Name)
	}
	return stop(m.pools, pool.Name)
}

func (m *mockLibvirtClient) StoragePoolUndefine(pool libvirt.StoragePool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("StoragePoolUndefine", pool.Name); err != nil {
		return err
	}
	if _, ok := m.pools[pool.Name]; !ok {
		return notFound(libvirt.ErrNoStoragePool, "storage pool", pool.Name)
	}
	delete(m.pools, pool.Name)
	return nil
}

// mockSession is a session whose Ping and Close results are configurable.
type mockSession struct {
	pingErr  error
	closeErr error
	pings    int
	closes   int
}

func (s *mockSession) Ping() error {
	s.pings++
	return s.pingErr
}

func (s *mockSession) Close() error {
	s.closes++
	return s.closeErr
}

// Compile-time checks.
var (
	_ libvirtClient = (*mockLibvirtClient)(nil)
	_ libvirtClient = (*libvirt.Libvirt)(nil)
	_ session       = (*Client)(nil)
)

// parsedDomain unmarshals domain XML for assertions.
func parsedDomain(xml string) (*libvirtxml.Domain, error) {
	var d libvirtxml.Domain
	if err := d.Unmarshal(xml); err != nil {
		return nil, err
	}
	return &d, nil
}
