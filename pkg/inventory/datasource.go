package inventory

import (
	"github.com/pkg/errors"
)

// NewDatasource creates a datasource for one datacenter section based on the configuration.
func NewDatasource(cfg *Config, dc *DatacenterConfig) (Datasource, error) {
	// Select datasource implementation.
	switch cfg.Datasource {
	case OvirtDatasourceType:
		return NewOvirtDatasource(cfg, dc)
	default:
		return nil, errors.Errorf("unknown datasource type: %s", cfg.Datasource)
	}
}
