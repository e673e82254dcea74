package paymail

import (
	"encoding/hex"
	"fmt"
	"net"
	"sort"
	"strings"
)

// DNSResolver defines the interface for DNS lookups.
// This allows tests to mock DNS resolution.
type DNSResolver interface {
	// LookupSRV looks up SRV records for the given service, proto, and name.
	LookupSRV(service, proto, name string) (string, []*net.SRV, error)

	// LookupTXT looks up TXT records for the given name.
	LookupTXT(name string) ([]string, error)
}

// defaultDNSResolver wraps the standard net package DNS functions.
type defaultDNSResolver struct{}

func (d *defaultDNSResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	return net.LookupSRV(service, proto, name)
}

func (d *defaultDNSResolver) LookupTXT(name string) ([]string, error) {
	return net.LookupTXT(name)
}

// DefaultDNSResolver is the plain system resolver. Resolve uses a
// DNSSECResolver unless told otherwise.
var DefaultDNSResolver DNSResolver = &defaultDNSResolver{}

// SRV services.
const (
	SRVPaymail = "bsvalias" // _bsvalias._tcp.{domain}
	SRVIbom    = "ibom"     // _ibom._tcp.{domain}, the ledger's RPC endpoint
)

// dnsLinkPrefix marks the TXT record carrying a domain's identity key.
const dnsLinkPrefix = "ibom="

// ResolveEndpoints resolves SRV records for a domain using the provided
// resolver. Returns host:port addresses sorted by priority then weight.
func ResolveEndpoints(domain, service string, resolver DNSResolver) ([]string, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrDNSLookupFailed)
	}
	if service == "" {
		return nil, fmt.Errorf("%w: empty service", ErrDNSLookupFailed)
	}

	_, addrs, err := resolver.LookupSRV(service, "tcp", domain)
	if err != nil {
		return nil, fmt.Errorf("%w: SRV lookup for _%s._tcp.%s: %w", ErrDNSLookupFailed, service, domain, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: no SRV records for _%s._tcp.%s", ErrNoEndpoints, service, domain)
	}

	// Priority ascending, weight descending.
	sort.SliceStable(addrs, func(i, j int) bool {
		if addrs[i].Priority != addrs[j].Priority {
			return addrs[i].Priority < addrs[j].Priority
		}
		return addrs[i].Weight > addrs[j].Weight
	})

	endpoints := make([]string, len(addrs))
	for i, srv := range addrs {
		host := strings.TrimSuffix(srv.Target, ".")
		endpoints[i] = net.JoinHostPort(host, fmt.Sprint(srv.Port))
	}
	return endpoints, nil
}

// ResolveRPCURL finds the ledger RPC URL advertised by _ibom._tcp.{domain}.
// Port 443 selects https, everything else http.
func ResolveRPCURL(domain string, resolver DNSResolver) (string, error) {
	endpoints, err := ResolveEndpoints(domain, SRVIbom, resolver)
	if err != nil {
		return "", err
	}
	scheme := "http"
	if strings.HasSuffix(endpoints[0], ":443") {
		scheme = "https"
	}
	return scheme + "://" + endpoints[0] + "/rpc", nil
}

// ResolveDNSLinkPubKey looks up _ibom.{domain} TXT records and returns the
// compressed public key from the first "ibom=<hex>" record.
func ResolveDNSLinkPubKey(domain string, resolver DNSResolver) ([]byte, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrDNSLookupFailed)
	}

	name := "_ibom." + domain
	txts, err := resolver.LookupTXT(name)
	if err != nil {
		return nil, fmt.Errorf("%w: TXT lookup for %s: %w", ErrDNSLookupFailed, name, err)
	}

	var pubKeyHex string
	for _, txt := range txts {
		txt = strings.TrimSpace(txt)
		if strings.HasPrefix(txt, dnsLinkPrefix) {
			pubKeyHex = strings.TrimSpace(strings.TrimPrefix(txt, dnsLinkPrefix))
			break
		}
	}
	if pubKeyHex == "" {
		return nil, fmt.Errorf("%w: no %s TXT record for %s", ErrDNSLookupFailed, dnsLinkPrefix, name)
	}
	if len(pubKeyHex) != compressedPubKeyHexLen {
		return nil, fmt.Errorf("%w: expected %d hex chars, got %d", ErrInvalidPubKey, compressedPubKeyHexLen, len(pubKeyHex))
	}

	pub, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex in TXT record: %w", ErrInvalidPubKey, err)
	}
	if err := validateCompressedPubKey(pub); err != nil {
		return nil, err
	}
	return pub, nil
}
