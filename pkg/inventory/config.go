package inventory

import (
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	ini "gopkg.in/ini.v1"
)

// Fallbacks applied when a key is missing from both a named section and the DEFAULT section.
const (
	defaultIPRegex    = `^(\d+).(\d+).(\d+).(\d+)$`
	defaultControlTag = "mi-control"
	defaultWorkerTag  = "mi-worker"
	defaultSSHPort    = 22
)

// mergeSection overlays a section's keys onto a copy of the DEFAULT section's keys.
func mergeSection(file *ini.File, section *ini.Section) map[string]string {
	merged := file.Section(ini.DefaultSection).KeysHash()

	for key, value := range section.KeysHash() {
		merged[key] = value
	}

	return merged
}

// ResolveSection produces a resolved datacenter record from a merged key/value set.
func (i *Inventory) ResolveSection(name string, keys map[string]string) (*DatacenterConfig, error) {
	dc := &DatacenterConfig{
		Name:              name,
		URL:               keys["ovirt_url"],
		Username:          keys["ovirt_username"],
		Password:          keys["ovirt_password"],
		CAFile:            keys["ovirt_ca"],
		Datacenter:        keys["ovirt_dc"],
		NicName:           keys["ovirt_nic_name"],
		IPRegex:           keys["ovirt_ip_regex"],
		ControlTag:        keys["ovirt_tag_control"],
		WorkerTag:         keys["ovirt_tag_worker"],
		ConsulDC:          keys["consul_dc"],
		SSHUser:           keys["ansible_ssh_user"],
		SSHPrivateKeyFile: keys["ansible_ssh_private_key_file"],
		SSHPassword:       keys["ansible_ssh_pass"],
		SSHPort:           defaultSSHPort,
	}

	// The backing datacenter and the Consul datacenter default to the section name.
	if len(dc.Datacenter) == 0 {
		dc.Datacenter = name
	}
	if len(dc.ConsulDC) == 0 {
		dc.ConsulDC = name
	}

	if len(dc.IPRegex) == 0 {
		dc.IPRegex = defaultIPRegex
	}
	if len(dc.ControlTag) == 0 {
		dc.ControlTag = defaultControlTag
	}
	if len(dc.WorkerTag) == 0 {
		dc.WorkerTag = defaultWorkerTag
	}

	if value, ok := keys["ovirt_api_insecure"]; ok {
		insecure, err := strconv.ParseBool(value)
		if err != nil {
			return nil, errors.Errorf("section '%s': invalid boolean value of key ovirt_api_insecure: %s", name, value)
		}
		dc.Insecure = insecure
	}

	if value, ok := keys["ansible_ssh_port"]; ok {
		port, err := strconv.Atoi(value)
		if err != nil {
			return nil, errors.Errorf("section '%s': invalid integer value of key ansible_ssh_port: %s", name, value)
		}
		dc.SSHPort = port
	}

	if err := i.Validator.Struct(dc); err != nil {
		if invalid, ok := err.(validator.ValidationErrors); ok && len(invalid) > 0 {
			return nil, errors.Errorf("section '%s': missing mandatory key: %s", name, invalid[0].Field())
		}
		return nil, errors.Wrapf(err, "section '%s': validation failure", name)
	}

	pattern, err := regexp.Compile(dc.IPRegex)
	if err != nil {
		return nil, errors.Wrapf(err, "section '%s': invalid value of key ovirt_ip_regex", name)
	}
	dc.pattern = pattern

	return dc, nil
}

// ResolveSections resolves all named sections of a datacenter configuration file.
func (i *Inventory) ResolveSections(file *ini.File) ([]*DatacenterConfig, error) {
	sections := make([]*DatacenterConfig, 0)

	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}

		dc, err := i.ResolveSection(section.Name(), mergeSection(file, section))
		if err != nil {
			return nil, err
		}

		sections = append(sections, dc)
	}

	return sections, nil
}

// LoadSections reads and resolves the datacenter configuration file.
func (i *Inventory) LoadSections(path string) ([]*DatacenterConfig, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read datacenter configuration")
	}

	return i.ResolveSections(file)
}

// GroupVars returns the datacenter-level group variables.
func (c *DatacenterConfig) GroupVars() map[string]interface{} {
	vars := map[string]interface{}{
		"dc":               c.Name,
		"ansible_ssh_port": c.SSHPort,
	}

	if len(c.SSHUser) > 0 {
		vars["ansible_ssh_user"] = c.SSHUser
	}
	if len(c.SSHPrivateKeyFile) > 0 {
		vars["ansible_ssh_private_key_file"] = c.SSHPrivateKeyFile
	}
	if len(c.SSHPassword) > 0 {
		vars["ansible_ssh_pass"] = c.SSHPassword
	}

	return vars
}

// Classify determines the role of a VM from its tag set.
// A VM carrying both role tags or neither one is not part of the inventory.
func (c *DatacenterConfig) Classify(tags []string) (Role, bool) {
	var control, worker bool

	for _, tag := range tags {
		switch tag {
		case c.ControlTag:
			control = true
		case c.WorkerTag:
			worker = true
		}
	}

	switch {
	case control && !worker:
		return RoleControl, true
	case worker && !control:
		return RoleWorker, true
	default:
		return "", false
	}
}

// ExtractIP returns the first reported address matching the configured pattern.
func (c *DatacenterConfig) ExtractIP(addresses []string) (string, bool) {
	for _, address := range addresses {
		if c.pattern.MatchString(address) {
			return address, true
		}
	}

	return "", false
}
