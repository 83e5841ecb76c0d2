package inventory

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

type (
	// Inventory implements a dynamic inventory for Ansible backed by oVirt datacenters.
	Inventory struct {
		// Inventory configuration.
		Config *Config
		// Inventory logger.
		Logger Logger
		// Inventory validator.
		Validator *validator.Validate
		// Resolved datacenter sections, in file order.
		Sections []*DatacenterConfig
		// Datasources keyed by section name.
		Datasources map[string]Datasource
	}

	// Config represents the main tool configuration.
	Config struct {
		// Datasource type.
		// Currently supported: ovirt.
		Datasource string `mapstructure:"datasource" default:"ovirt"`
		// Datacenter configuration file settings.
		Inventory struct {
			// Path to the INI file holding the datacenter sections.
			Path string `mapstructure:"path" default:"ovirt.ini"`
		} `mapstructure:"inventory"`
		// oVirt API client settings.
		Ovirt struct {
			// Timeout for a single oVirt API call.
			Timeout time.Duration `mapstructure:"timeout" default:"60s"`
		} `mapstructure:"ovirt"`
		// Logging settings.
		Log struct {
			// Log level.
			Level string `mapstructure:"level" default:"info"`
		} `mapstructure:"log"`
		// Inventory logger.
		Logger Logger `mapstructure:"-" json:"-" yaml:"-"`
	}

	// DatacenterConfig is one resolved datacenter section of the configuration file.
	// Keys missing from a section fall back to the DEFAULT section and then to
	// hard-coded defaults where those exist.
	DatacenterConfig struct {
		// Section name. Used as the datacenter group key in the inventory document.
		Name string `ini:"-" json:"name" yaml:"name"`
		// oVirt API endpoint.
		URL string `ini:"ovirt_url" validate:"required,notblank" json:"ovirt_url" yaml:"ovirt_url"`
		// oVirt API username.
		Username string `ini:"ovirt_username" validate:"required,notblank" json:"ovirt_username" yaml:"ovirt_username"`
		// oVirt API password.
		Password string `ini:"ovirt_password" validate:"required,notblank" json:"-" yaml:"-"`
		// Skip verification of the oVirt engine certificate chain and host name.
		Insecure bool `ini:"ovirt_api_insecure" json:"ovirt_api_insecure" yaml:"ovirt_api_insecure"`
		// Trusted CA bundle path.
		CAFile string `ini:"ovirt_ca" json:"ovirt_ca,omitempty" yaml:"ovirt_ca,omitempty"`
		// Datacenter name as known to the oVirt engine. Defaults to the section name,
		// which allows exposing a backing datacenter under an arbitrary alias.
		Datacenter string `ini:"ovirt_dc" json:"ovirt_dc" yaml:"ovirt_dc"`
		// Restrict IP extraction to the NIC named 'nic_<value>', if set.
		NicName string `ini:"ovirt_nic_name" json:"ovirt_nic_name,omitempty" yaml:"ovirt_nic_name,omitempty"`
		// Pattern a reported address must match to become the host key.
		IPRegex string `ini:"ovirt_ip_regex" validate:"required" json:"ovirt_ip_regex" yaml:"ovirt_ip_regex"`
		// Tag marking control plane VMs.
		ControlTag string `ini:"ovirt_tag_control" validate:"required,notblank" json:"ovirt_tag_control" yaml:"ovirt_tag_control"`
		// Tag marking worker VMs.
		WorkerTag string `ini:"ovirt_tag_worker" validate:"required,notblank" json:"ovirt_tag_worker" yaml:"ovirt_tag_worker"`
		// Consul datacenter hostvar. Defaults to the section name.
		ConsulDC string `ini:"consul_dc" json:"consul_dc" yaml:"consul_dc"`
		// Ansible connection variables for the datacenter group.
		SSHPort           int    `ini:"ansible_ssh_port" json:"ansible_ssh_port" yaml:"ansible_ssh_port"`
		SSHUser           string `ini:"ansible_ssh_user" json:"ansible_ssh_user,omitempty" yaml:"ansible_ssh_user,omitempty"`
		SSHPrivateKeyFile string `ini:"ansible_ssh_private_key_file" json:"ansible_ssh_private_key_file,omitempty" yaml:"ansible_ssh_private_key_file,omitempty"`
		SSHPassword       string `ini:"ansible_ssh_pass" json:"-" yaml:"-"`

		// Compiled form of IPRegex.
		pattern *regexp.Regexp
	}

	// Datasource provides an interface for all supported VM datasources.
	// A datasource serves a single datacenter section.
	Datasource interface {
		// ListVMs returns all VMs of the configured datacenter.
		ListVMs() ([]*VMRecord, error)
		// Close closes datasource clients and performs other housekeeping.
		Close()
	}

	// VMRecord represents a single VM returned by a datasource.
	VMRecord struct {
		// VM name.
		Name string
		// Names of the tags attached to the VM.
		Tags []string
		// IP addresses reported for the VM, usually by the guest agent.
		Addresses []string
		// Whether the VM is up.
		Up bool
	}

	// Role is a host role derived from VM tags.
	Role string

	// Host is an inventory-eligible VM.
	Host struct {
		// Extracted IP address: the host key in the inventory document.
		IP string
		// Host role.
		Role Role
	}

	// Group is an inventory group ready to be marshalled into a JSON representation.
	Group struct {
		// Hosts belonging to this group.
		Hosts []string `json:"hosts"`
		// Group variables.
		Vars map[string]interface{} `json:"vars,omitempty"`
	}

	// Meta is the _meta section of the inventory document.
	Meta struct {
		// Per-host variables keyed by host IP.
		Hostvars map[string]*HostVars `json:"hostvars"`
	}

	// HostVars represents the variables of a single host.
	HostVars struct {
		// Datacenter section name.
		DC string `json:"dc"`
		// Host role.
		Role Role `json:"role"`
		// Consul datacenter name.
		ConsulDC string `json:"consul_dc"`
	}

	// Logger provides a logging interface for the inventory and its datasources.
	Logger interface {
		Info(args ...interface{})
		Infof(template string, args ...interface{})
		Warn(args ...interface{})
		Warnf(template string, args ...interface{})
		Error(args ...interface{})
		Errorf(template string, args ...interface{})
		Fatal(args ...interface{})
		Fatalf(template string, args ...interface{})
		Debug(args ...interface{})
		Debugf(template string, args ...interface{})
	}
)

const (
	// RoleControl marks control plane hosts.
	RoleControl Role = "control"
	// RoleWorker marks worker hosts.
	RoleWorker Role = "worker"
)
