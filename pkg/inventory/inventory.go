package inventory

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/pkg/errors"

	"github.com/mi-ops/ansible-ovirt-inventory/internal/logger"
)

// GetHosts queries a datacenter section and returns its inventory-eligible hosts.
func (i *Inventory) GetHosts(dc *DatacenterConfig) ([]*Host, error) {
	log := i.Logger
	hosts := make([]*Host, 0)

	vms, err := i.Datasources[dc.Name].ListVMs()
	if err != nil {
		return nil, errors.Wrapf(err, "datacenter query failure: %s", dc.Name)
	}

	for _, vm := range vms {
		if !vm.Up {
			log.Debugf("[%s] skipping VM %s: not up", dc.Name, vm.Name)
			continue
		}

		role, ok := dc.Classify(vm.Tags)
		if !ok {
			log.Debugf("[%s] skipping VM %s: no usable role tag", dc.Name, vm.Name)
			continue
		}

		ip, ok := dc.ExtractIP(vm.Addresses)
		if !ok {
			log.Debugf("[%s] skipping VM %s: no address matching %s", dc.Name, vm.Name, dc.IPRegex)
			continue
		}

		hosts = append(hosts, &Host{IP: ip, Role: role})
	}

	return hosts, nil
}

// ExportInventory assembles the inventory document into a map ready to be
// marshalled into a JSON representation of a dynamic Ansible inventory.
func (i *Inventory) ExportInventory(export map[string]interface{}) error {
	meta := &Meta{Hostvars: make(map[string]*HostVars)}

	// Role groups span all datacenters and are present even when empty.
	roles := map[Role]map[string]bool{
		RoleControl: make(map[string]bool),
		RoleWorker:  make(map[string]bool),
	}

	for _, dc := range i.Sections {
		hosts, err := i.GetHosts(dc)
		if err != nil {
			return err
		}

		members := make(map[string]bool)
		for _, host := range hosts {
			members[host.IP] = true
			roles[host.Role][host.IP] = true
			meta.Hostvars[host.IP] = &HostVars{DC: dc.Name, Role: host.Role, ConsulDC: dc.ConsulDC}
		}

		export[dc.Name] = &Group{Hosts: sortedHosts(members), Vars: dc.GroupVars()}
	}

	for role, members := range roles {
		export[fmt.Sprintf("role=%s", role)] = &Group{Hosts: sortedHosts(members)}
	}

	export["_meta"] = meta

	return nil
}

// GetHostVariables acquires the variable map of a single host from the assembled document.
func (i *Inventory) GetHostVariables(host string) (interface{}, error) {
	export := make(map[string]interface{})

	if err := i.ExportInventory(export); err != nil {
		return nil, err
	}

	meta := export["_meta"].(*Meta)
	if vars, ok := meta.Hostvars[host]; ok {
		return vars, nil
	}

	return struct{}{}, nil
}

// Close shuts down all datasources.
func (i *Inventory) Close() {
	for _, ds := range i.Datasources {
		ds.Close()
	}
}

// sortedHosts flattens a host set into a sorted list.
func sortedHosts(members map[string]bool) []string {
	hosts := make([]string, 0, len(members))
	for host := range members {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	return hosts
}

// newValidator creates a struct validator that reports fields by their INI key names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("ini"), ",", 2)[0]
	})

	return v
}

// New creates an instance of the oVirt inventory with user-supplied configuration.
func New(cfg *Config) (*Inventory, error) {
	// Initialize logger.
	if cfg.Logger == nil {
		l, err := logger.New(cfg.Log.Level)
		if err != nil {
			return nil, errors.Wrap(err, "logger initialization failure")
		}
		cfg.Logger = l
	}

	i := &Inventory{
		Config:    cfg,
		Logger:    cfg.Logger,
		Validator: newValidator(),
	}

	// Resolve datacenter sections.
	sections, err := i.LoadSections(cfg.Inventory.Path)
	if err != nil {
		return nil, err
	}
	i.Sections = sections

	// Initialize datasources, one per section.
	i.Datasources = make(map[string]Datasource)
	for _, dc := range sections {
		ds, err := NewDatasource(cfg, dc)
		if err != nil {
			i.Close()
			return nil, errors.Wrapf(err, "datasource initialization failure: %s", dc.Name)
		}

		i.Datasources[dc.Name] = ds
	}

	return i, nil
}

// NewDefault creates an instance of the oVirt inventory with the default configuration.
func NewDefault() (*Inventory, error) {
	cfg := &Config{}

	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "defaults initialization failure")
	}

	return New(cfg)
}
