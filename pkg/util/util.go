package util

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Marshal returns the JSON or YAML encoding of v.
func Marshal(v interface{}, format string) ([]byte, error) {
	var bytes []byte
	var err error

	switch format {
	case "yaml":
		bytes, err = yaml.Marshal(v)
	case "json":
		bytes, err = json.Marshal(v)
	case "json-pretty":
		bytes, err = json.MarshalIndent(v, "", "    ")
	default:
		return nil, errors.Errorf("unsupported format: %s", format)
	}

	if err != nil {
		return bytes, errors.Wrap(err, "marshalling error")
	}

	return bytes, nil
}
