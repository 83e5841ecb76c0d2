package inventory

import (
	"sort"
	"time"

	ovirtclientlog "github.com/ovirt/go-ovirt-client-log/v3"
	ovirtclient "github.com/ovirt/go-ovirt-client/v2"
	"github.com/pkg/errors"
)

const (
	// oVirt datasource type.
	OvirtDatasourceType string = "ovirt"
)

type (
	// OvirtDatasource implements a datasource backed by the oVirt engine API.
	OvirtDatasource struct {
		// Datacenter section this datasource serves.
		Config *DatacenterConfig
		// Inventory logger.
		Logger Logger
		// Timeout for a single API call.
		Timeout time.Duration
		// oVirt API client.
		Client ovirtclient.Client
	}
)

// Retry strategies applied to every API call.
func (o *OvirtDatasource) retries() []ovirtclient.RetryStrategy {
	return []ovirtclient.RetryStrategy{
		ovirtclient.AutoRetry(),
		ovirtclient.Timeout(o.Timeout),
	}
}

// datacenterID looks up the configured datacenter by name.
func (o *OvirtDatasource) datacenterID() (ovirtclient.DatacenterID, error) {
	datacenters, err := o.Client.ListDatacenters(o.retries()...)
	if err != nil {
		return "", errors.Wrap(err, "datacenter listing failed")
	}

	for _, datacenter := range datacenters {
		if datacenter.Name() == o.Config.Datacenter {
			return datacenter.ID(), nil
		}
	}

	return "", errors.Errorf("datacenter not found: %s", o.Config.Datacenter)
}

// clusterIDs collects the clusters of a datacenter. VMs reference their
// datacenter only through the cluster they run in.
func (o *OvirtDatasource) clusterIDs(id ovirtclient.DatacenterID) (map[ovirtclient.ClusterID]bool, error) {
	clusters, err := o.Client.ListDatacenterClusters(id, o.retries()...)
	if err != nil {
		return nil, errors.Wrap(err, "cluster listing failed")
	}

	ids := make(map[ovirtclient.ClusterID]bool)
	for _, cluster := range clusters {
		ids[cluster.ID()] = true
	}

	return ids, nil
}

// tagNames resolves tag IDs into tag names, caching lookups across VMs.
func (o *OvirtDatasource) tagNames(ids []ovirtclient.TagID, cache map[ovirtclient.TagID]string) ([]string, error) {
	names := make([]string, 0, len(ids))

	for _, id := range ids {
		name, ok := cache[id]
		if !ok {
			tag, err := o.Client.GetTag(id, o.retries()...)
			if err != nil {
				return nil, errors.Wrap(err, "tag lookup failed")
			}

			name = tag.Name()
			cache[id] = name
		}

		names = append(names, name)
	}

	return names, nil
}

// addresses collects the guest-agent-reported IP addresses of a VM.
func (o *OvirtDatasource) addresses(id ovirtclient.VMID) ([]string, error) {
	params := ovirtclient.NewVMIPSearchParams()
	if len(o.Config.NicName) > 0 {
		// NIC names in the engine carry the nic_ prefix.
		params = params.WithIncludedInterface("nic_" + o.Config.NicName)
	}

	ips, err := o.Client.GetVMIPAddresses(id, params, o.retries()...)
	if err != nil {
		return nil, errors.Wrap(err, "IP address lookup failed")
	}

	// Walk interfaces in sorted order to keep the address order stable between runs.
	interfaces := make([]string, 0, len(ips))
	for name := range ips {
		interfaces = append(interfaces, name)
	}
	sort.Strings(interfaces)

	addresses := make([]string, 0)
	for _, name := range interfaces {
		for _, ip := range ips[name] {
			addresses = append(addresses, ip.String())
		}
	}

	return addresses, nil
}

// ListVMs returns all VMs of the configured datacenter.
func (o *OvirtDatasource) ListVMs() ([]*VMRecord, error) {
	datacenter, err := o.datacenterID()
	if err != nil {
		return nil, err
	}

	clusters, err := o.clusterIDs(datacenter)
	if err != nil {
		return nil, err
	}

	vms, err := o.Client.ListVMs(o.retries()...)
	if err != nil {
		return nil, errors.Wrap(err, "VM listing failed")
	}

	tags := make(map[ovirtclient.TagID]string)
	records := make([]*VMRecord, 0)

	for _, vm := range vms {
		if !clusters[vm.ClusterID()] {
			continue
		}

		record := &VMRecord{
			Name: vm.Name(),
			Up:   vm.Status() == ovirtclient.VMStatusUp,
		}

		// Tag and address lookups cost an API call each, skip them for VMs that are down.
		if record.Up {
			if record.Tags, err = o.tagNames(vm.TagIDs(), tags); err != nil {
				return nil, err
			}

			if record.Addresses, err = o.addresses(vm.ID()); err != nil {
				return nil, err
			}
		}

		records = append(records, record)
	}

	o.Logger.Debugf("[%s] discovered %d VMs in datacenter %s", o.Config.Name, len(records), o.Config.Datacenter)

	return records, nil
}

// Close shuts down the datasource and performs other housekeeping.
func (o *OvirtDatasource) Close() {}

// NewOvirtDatasource creates an oVirt datasource for one datacenter section.
func NewOvirtDatasource(cfg *Config, dc *DatacenterConfig) (*OvirtDatasource, error) {
	client, err := ovirtclient.New(
		dc.URL,
		dc.Username,
		dc.Password,
		ovirtTLS(dc),
		ovirtclientlog.NewNOOPLogger(),
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "oVirt client initialization failure")
	}

	return &OvirtDatasource{
		Config:  dc,
		Logger:  cfg.Logger,
		Timeout: cfg.Ovirt.Timeout,
		Client:  client,
	}, nil
}
