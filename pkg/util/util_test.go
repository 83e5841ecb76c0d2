package util

import (
	"testing"
)

func TestMarshal(t *testing.T) {
	tests := []struct {
		name    string
		v       interface{}
		format  string
		want    string
		wantErr bool
	}{
		{
			name:    "json",
			v:       map[string]string{"dc": "dc1"},
			format:  "json",
			want:    `{"dc":"dc1"}`,
			wantErr: false,
		},
		{
			name:    "json-pretty",
			v:       map[string]string{"dc": "dc1"},
			format:  "json-pretty",
			want:    "{\n    \"dc\": \"dc1\"\n}",
			wantErr: false,
		},
		{
			name:    "yaml",
			v:       map[string]string{"dc": "dc1"},
			format:  "yaml",
			want:    "dc: dc1\n",
			wantErr: false,
		},
		{
			name:    "unsupported",
			v:       map[string]string{"dc": "dc1"},
			format:  "toml",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.v, tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("Marshal() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && string(got) != tt.want {
				t.Errorf("Marshal() = %q, want %q", string(got), tt.want)
			}
		})
	}
}
