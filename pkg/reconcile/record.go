package reconcile

import (
	"strconv"
	"strings"

	"github.com/miekg/dns"

	"gitlab.bluewillows.net/root/sambadns/pkg/sambatool"
)

// Record is a record in the form samba-tool needs it. It is either a
// ForwardRecord or a PTRRecord.
type Record interface {
	// Command builds the add or delete command for this record.
	Command(b sambatool.Builder, action sambatool.Action, server string) (sambatool.Command, error)

	// Operands returns the zone, name, type and data tokens for server.
	Operands(server string) sambatool.Operands
}

// NewRecord converts a spec into its command form. PTR specs are
// resolved into the reverse zone derived from their IPv4 data.
func NewRecord(spec RecordSpec) (Record, error) {
	if spec.Type == RecordTypePTR {
		return NewPTRRecord(spec.Name, spec.Data)
	}
	return ForwardRecord{
		Zone: spec.Zone,
		Name: spec.Name,
		Type: spec.Type,
		Data: spec.Data,
	}, nil
}

// ForwardRecord is used verbatim: every non-PTR type.
type ForwardRecord struct {
	Zone string
	Name string
	Type RecordType
	Data string
}

// Operands implements Record.
func (r ForwardRecord) Operands(server string) sambatool.Operands {
	return sambatool.Operands{
		Server: server,
		Zone:   r.Zone,
		Name:   r.Name,
		Type:   string(r.Type),
		Data:   r.Data,
	}
}

// Command implements Record.
func (r ForwardRecord) Command(b sambatool.Builder, action sambatool.Action, server string) (sambatool.Command, error) {
	return b.Build(action, r.Operands(server))
}

// PTRRecord is a reverse lookup record. Its zone and name come from the
// IPv4 address, its data is the host name the address points back to.
type PTRRecord struct {
	// Zone is the /24 reverse zone, e.g. "1.168.192.in-addr.arpa".
	Zone string
	// Name is the last octet of the address.
	Name string
	// Target is the host name.
	Target string
}

// NewPTRRecord derives the PTR record for host at the dotted-quad address
// ipv4. For 192.168.1.10 the zone is 1.168.192.in-addr.arpa and the name
// is 10.
func NewPTRRecord(host, ipv4 string) (PTRRecord, error) {
	octets := strings.Split(ipv4, ".")
	if len(octets) != 4 {
		return PTRRecord{}, invalidInput("data", "PTR data %q is not a dotted-quad IPv4 address", ipv4)
	}
	for _, octet := range octets {
		if !isOctet(octet) {
			return PTRRecord{}, invalidInput("data", "PTR data %q has invalid octet %q", ipv4, octet)
		}
	}

	// ReverseAddr yields d.c.b.a.in-addr.arpa. for a.b.c.d.
	arpa, err := dns.ReverseAddr(ipv4)
	if err != nil {
		return PTRRecord{}, invalidInput("data", "PTR data %q: %v", ipv4, err)
	}
	labels := dns.SplitDomainName(arpa)
	if len(labels) != 6 {
		return PTRRecord{}, invalidInput("data", "PTR data %q: unexpected reverse name %q", ipv4, arpa)
	}

	return PTRRecord{
		Zone:   strings.Join(labels[1:], "."),
		Name:   labels[0],
		Target: host,
	}, nil
}

// isOctet reports whether s is a decimal number in [0, 255].
func isOctet(s string) bool {
	if s == "" || len(s) > 3 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(s)
	return err == nil && n <= 255
}

// Operands implements Record.
func (r PTRRecord) Operands(server string) sambatool.Operands {
	return sambatool.Operands{
		Server: server,
		Zone:   r.Zone,
		Name:   r.Name,
		Type:   string(RecordTypePTR),
		Data:   r.Target,
	}
}

// Command implements Record.
func (r PTRRecord) Command(b sambatool.Builder, action sambatool.Action, server string) (sambatool.Command, error) {
	return b.Build(action, r.Operands(server))
}

var (
	_ Record = ForwardRecord{}
	_ Record = PTRRecord{}
)
