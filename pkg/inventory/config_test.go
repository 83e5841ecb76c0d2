package inventory

import (
	"reflect"
	"regexp"
	"strings"
	"testing"

	ini "gopkg.in/ini.v1"
)

func TestInventory_ResolveSections(t *testing.T) {
	testInventory := &Inventory{
		Validator: newValidator(),
	}

	tests := []struct {
		name        string
		data        string
		want        []*DatacenterConfig
		wantErr     bool
		errContains string
	}{
		{
			name: "defaults",
			data: `
[DEFAULT]
ovirt_url = https://ovirt.example.com/ovirt-engine/api
ovirt_username = admin@internal
ovirt_password = secret
ansible_ssh_user = rocketeer

[dc1]
`,
			want: []*DatacenterConfig{
				{
					Name:       "dc1",
					URL:        "https://ovirt.example.com/ovirt-engine/api",
					Username:   "admin@internal",
					Password:   "secret",
					Datacenter: "dc1",
					ConsulDC:   "dc1",
					IPRegex:    defaultIPRegex,
					ControlTag: defaultControlTag,
					WorkerTag:  defaultWorkerTag,
					SSHPort:    defaultSSHPort,
					SSHUser:    "rocketeer",
				},
			},
			wantErr: false,
		},
		{
			name: "overrides",
			data: `
[DEFAULT]
ovirt_url = https://ovirt.example.com/ovirt-engine/api
ovirt_username = admin@internal
ovirt_password = secret

[dc1]
ovirt_password = override
ovirt_api_insecure = true
ovirt_ca = /etc/pki/ovirt.pem
ovirt_dc = local_datacenter
ovirt_nic_name = eth0
ovirt_ip_regex = ^192\.168\.(\d+)\.(\d+)$
ovirt_tag_control = prod-control
ovirt_tag_worker = prod-worker
consul_dc = alpha
ansible_ssh_port = 2222
ansible_ssh_user = rocketeer
ansible_ssh_private_key_file = /home/rocketeer/.ssh/id_ed25519
ansible_ssh_pass = hunter2
`,
			want: []*DatacenterConfig{
				{
					Name:              "dc1",
					URL:               "https://ovirt.example.com/ovirt-engine/api",
					Username:          "admin@internal",
					Password:          "override",
					Insecure:          true,
					CAFile:            "/etc/pki/ovirt.pem",
					Datacenter:        "local_datacenter",
					NicName:           "eth0",
					IPRegex:           `^192\.168\.(\d+)\.(\d+)$`,
					ControlTag:        "prod-control",
					WorkerTag:         "prod-worker",
					ConsulDC:          "alpha",
					SSHPort:           2222,
					SSHUser:           "rocketeer",
					SSHPrivateKeyFile: "/home/rocketeer/.ssh/id_ed25519",
					SSHPassword:       "hunter2",
				},
			},
			wantErr: false,
		},
		{
			name: "multiple-sections",
			data: `
[DEFAULT]
ovirt_url = https://ovirt.example.com/ovirt-engine/api
ovirt_username = admin@internal
ovirt_password = secret

[dc1]

[dc2]
ovirt_dc = dc1
`,
			want: []*DatacenterConfig{
				{
					Name:       "dc1",
					URL:        "https://ovirt.example.com/ovirt-engine/api",
					Username:   "admin@internal",
					Password:   "secret",
					Datacenter: "dc1",
					ConsulDC:   "dc1",
					IPRegex:    defaultIPRegex,
					ControlTag: defaultControlTag,
					WorkerTag:  defaultWorkerTag,
					SSHPort:    defaultSSHPort,
				},
				{
					Name:       "dc2",
					URL:        "https://ovirt.example.com/ovirt-engine/api",
					Username:   "admin@internal",
					Password:   "secret",
					Datacenter: "dc1",
					ConsulDC:   "dc2",
					IPRegex:    defaultIPRegex,
					ControlTag: defaultControlTag,
					WorkerTag:  defaultWorkerTag,
					SSHPort:    defaultSSHPort,
				},
			},
			wantErr: false,
		},
		{
			name: "missing-password",
			data: `
[DEFAULT]
ovirt_url = https://ovirt.example.com/ovirt-engine/api
ovirt_username = admin@internal

[dc1]
`,
			wantErr:     true,
			errContains: "ovirt_password",
		},
		{
			name: "missing-url",
			data: `
[DEFAULT]
ovirt_username = admin@internal
ovirt_password = secret

[dc1]
`,
			wantErr:     true,
			errContains: "ovirt_url",
		},
		{
			name: "invalid-insecure",
			data: `
[DEFAULT]
ovirt_url = https://ovirt.example.com/ovirt-engine/api
ovirt_username = admin@internal
ovirt_password = secret

[dc1]
ovirt_api_insecure = maybe
`,
			wantErr:     true,
			errContains: "ovirt_api_insecure",
		},
		{
			name: "invalid-port",
			data: `
[DEFAULT]
ovirt_url = https://ovirt.example.com/ovirt-engine/api
ovirt_username = admin@internal
ovirt_password = secret

[dc1]
ansible_ssh_port = ssh
`,
			wantErr:     true,
			errContains: "ansible_ssh_port",
		},
		{
			name: "invalid-regex",
			data: `
[DEFAULT]
ovirt_url = https://ovirt.example.com/ovirt-engine/api
ovirt_username = admin@internal
ovirt_password = secret

[dc1]
ovirt_ip_regex = ^(192\.
`,
			wantErr:     true,
			errContains: "ovirt_ip_regex",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := ini.Load([]byte(tt.data))
			if err != nil {
				t.Fatalf("failed to parse test data: %v", err)
			}

			got, err := testInventory.ResolveSections(file)
			if (err != nil) != tt.wantErr {
				t.Errorf("Inventory.ResolveSections() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Inventory.ResolveSections() error = %v, should contain %q", err, tt.errContains)
				}
				if !strings.Contains(err.Error(), "dc1") {
					t.Errorf("Inventory.ResolveSections() error = %v, should name the section", err)
				}
				return
			}

			for _, dc := range got {
				if dc.pattern == nil {
					t.Errorf("Inventory.ResolveSections() left section %s without a compiled pattern", dc.Name)
				}
				dc.pattern = nil
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Inventory.ResolveSections() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDatacenterConfig_Classify(t *testing.T) {
	dc := &DatacenterConfig{
		ControlTag: "mi-control",
		WorkerTag:  "mi-worker",
	}

	tests := []struct {
		name     string
		tags     []string
		want     Role
		eligible bool
	}{
		{
			name:     "control",
			tags:     []string{"mi-control"},
			want:     RoleControl,
			eligible: true,
		},
		{
			name:     "worker",
			tags:     []string{"backup", "mi-worker"},
			want:     RoleWorker,
			eligible: true,
		},
		{
			name:     "both",
			tags:     []string{"mi-control", "mi-worker"},
			eligible: false,
		},
		{
			name:     "neither",
			tags:     []string{"backup"},
			eligible: false,
		},
		{
			name:     "no-tags",
			tags:     nil,
			eligible: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, eligible := dc.Classify(tt.tags)
			if got != tt.want || eligible != tt.eligible {
				t.Errorf("DatacenterConfig.Classify() = (%v, %v), want (%v, %v)", got, eligible, tt.want, tt.eligible)
			}
		})
	}
}

func TestDatacenterConfig_ExtractIP(t *testing.T) {
	dc := &DatacenterConfig{
		pattern: regexp.MustCompile(`^192\.168\.(\d+)\.(\d+)$`),
	}

	tests := []struct {
		name      string
		addresses []string
		want      string
		matched   bool
	}{
		{
			name:      "single",
			addresses: []string{"192.168.10.20"},
			want:      "192.168.10.20",
			matched:   true,
		},
		{
			name:      "first-match-wins",
			addresses: []string{"10.0.0.1", "192.168.10.20", "192.168.10.55"},
			want:      "192.168.10.20",
			matched:   true,
		},
		{
			name:      "no-match",
			addresses: []string{"10.0.0.1", "fe80::1"},
			matched:   false,
		},
		{
			name:      "no-addresses",
			addresses: nil,
			matched:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := dc.ExtractIP(tt.addresses)
			if got != tt.want || matched != tt.matched {
				t.Errorf("DatacenterConfig.ExtractIP() = (%v, %v), want (%v, %v)", got, matched, tt.want, tt.matched)
			}
		})
	}
}

func TestDatacenterConfig_GroupVars(t *testing.T) {
	tests := []struct {
		name string
		dc   *DatacenterConfig
		want map[string]interface{}
	}{
		{
			name: "minimal",
			dc: &DatacenterConfig{
				Name:    "dc1",
				SSHPort: 22,
			},
			want: map[string]interface{}{
				"dc":               "dc1",
				"ansible_ssh_port": 22,
			},
		},
		{
			name: "full",
			dc: &DatacenterConfig{
				Name:              "dc1",
				SSHPort:           2222,
				SSHUser:           "rocketeer",
				SSHPrivateKeyFile: "/home/rocketeer/.ssh/id_ed25519",
				SSHPassword:       "hunter2",
			},
			want: map[string]interface{}{
				"dc":                           "dc1",
				"ansible_ssh_port":             2222,
				"ansible_ssh_user":             "rocketeer",
				"ansible_ssh_private_key_file": "/home/rocketeer/.ssh/id_ed25519",
				"ansible_ssh_pass":             "hunter2",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dc.GroupVars(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DatacenterConfig.GroupVars() = %v, want %v", got, tt.want)
			}
		})
	}
}
