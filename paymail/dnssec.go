package paymail

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	defaultUpstream = "8.8.8.8:53"
	defaultTimeout  = 10 * time.Second
	edns0BufSize    = 4096
)

// DNSSECResolver is a DNSResolver that only accepts answers the upstream
// recursive resolver marked as authenticated (AD flag). Truncated UDP
// answers are retried over TCP.
type DNSSECResolver struct {
	Upstream string
	Timeout  time.Duration
}

// NewDNSSECResolver returns a resolver for upstream, "8.8.8.8:53" when empty.
func NewDNSSECResolver(upstream string) *DNSSECResolver {
	if upstream == "" {
		upstream = defaultUpstream
	}
	return &DNSSECResolver{Upstream: upstream, Timeout: defaultTimeout}
}

// LookupSRV returns the authenticated SRV records of _service._proto.name.
// The canonical name is always empty.
func (r *DNSSECResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	qname := fmt.Sprintf("_%s._%s.%s", service, proto, name)
	srvs, err := answers(r, qname, dns.TypeSRV, func(rr *dns.SRV) *net.SRV {
		return &net.SRV{
			Target:   strings.TrimSuffix(rr.Target, "."),
			Port:     rr.Port,
			Priority: rr.Priority,
			Weight:   rr.Weight,
		}
	})
	return "", srvs, err
}

// LookupTXT returns the authenticated TXT records of name. Multi-string
// records are joined.
func (r *DNSSECResolver) LookupTXT(name string) ([]string, error) {
	return answers(r, name, dns.TypeTXT, func(rr *dns.TXT) string {
		return strings.Join(rr.Txt, "")
	})
}

// answers runs one validated query and converts every answer of type R.
func answers[R dns.RR, T any](r *DNSSECResolver, name string, qtype uint16, conv func(R) T) ([]T, error) {
	resp, err := r.exchange(name, qtype)
	if err != nil {
		return nil, err
	}
	var out []T
	for _, rr := range resp.Answer {
		if typed, ok := rr.(R); ok {
			out = append(out, conv(typed))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no %s records for %s", ErrDNSLookupFailed, dns.TypeToString[qtype], name)
	}
	return out, nil
}

func (r *DNSSECResolver) exchange(name string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true
	msg.SetEdns0(edns0BufSize, true)

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	resp, _, err := (&dns.Client{Timeout: timeout}).Exchange(msg, r.Upstream)
	if err == nil && resp.Truncated {
		resp, _, err = (&dns.Client{Net: "tcp", Timeout: timeout}).Exchange(msg, r.Upstream)
	}
	qt := dns.TypeToString[qtype]
	if err != nil {
		return nil, fmt.Errorf("%w: query %s %s: %w", ErrDNSLookupFailed, name, qt, err)
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return nil, fmt.Errorf("%w: query %s %s: rcode %s", ErrDNSLookupFailed, name, qt, dns.RcodeToString[resp.Rcode])
	}
	if !resp.AuthenticatedData {
		return nil, fmt.Errorf("%w: AD flag not set for %s %s", ErrDNSSECValidationFailed, name, qt)
	}
	return resp, nil
}
