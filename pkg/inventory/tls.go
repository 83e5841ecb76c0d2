package inventory

import (
	ovirtclient "github.com/ovirt/go-ovirt-client/v2"
)

// ovirtTLS builds the TLS provider for an oVirt API connection: certificate
// verification is skipped entirely when the section says so, otherwise the
// configured CA bundle or the system trust root is used.
func ovirtTLS(dc *DatacenterConfig) ovirtclient.TLSProvider {
	tls := ovirtclient.TLS()

	switch {
	case dc.Insecure:
		tls.Insecure()
	case len(dc.CAFile) > 0:
		tls.CACertsFromFile(dc.CAFile)
	default:
		tls.CACertsFromSystem()
	}

	return tls
}
