package reconcile

import (
	"errors"
	"slices"
	"strings"

	"github.com/miekg/dns"
)

// State is the desired presence of a record or zone.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// Function selects what a request manages.
type Function string

const (
	FunctionRecord Function = "record"
	FunctionZone   Function = "zone"
)

// RecordType is a DNS record type accepted by the record function.
type RecordType string

const (
	RecordTypeA     RecordType = "A"
	RecordTypeAAAA  RecordType = "AAAA"
	RecordTypePTR   RecordType = "PTR"
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeMX    RecordType = "MX"
	RecordTypeSRV   RecordType = "SRV"
	RecordTypeTXT   RecordType = "TXT"
)

// RecordTypes lists the supported record types.
var RecordTypes = []RecordType{
	RecordTypeA, RecordTypeAAAA, RecordTypePTR, RecordTypeCNAME,
	RecordTypeMX, RecordTypeSRV, RecordTypeTXT,
}

// DefaultRecordType is used when a record request does not name a type.
const DefaultRecordType = RecordTypeA

// IsValid reports whether t is one of RecordTypes.
func (t RecordType) IsValid() bool {
	if _, known := dns.StringToType[string(t)]; !known {
		return false
	}
	return slices.Contains(RecordTypes, t)
}

// RecordSpec identifies one record.
type RecordSpec struct {
	Server string
	Zone   string
	Name   string
	Type   RecordType
	Data   string
}

// ZoneSpec identifies one zone.
type ZoneSpec struct {
	Server string
	Zone   string
}

// Request is a desired state as received from a caller.
type Request struct {
	State    State      `json:"state,omitempty" yaml:"state,omitempty" toml:"state,omitempty"`
	Function Function   `json:"function" yaml:"function" toml:"function"`
	Server   string     `json:"server" yaml:"server" toml:"server"`
	Zone     string     `json:"zone" yaml:"zone" toml:"zone"`
	Name     string     `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Type     RecordType `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Data     string     `json:"data,omitempty" yaml:"data,omitempty" toml:"data,omitempty"`
	Username string     `json:"username,omitempty" yaml:"username,omitempty" toml:"username,omitempty"`
	Password string     `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
	DryRun   bool       `json:"dry_run,omitempty" yaml:"dry_run,omitempty" toml:"dry_run,omitempty"`
}

// Normalize fills defaults and canonicalizes enum casing.
func (r *Request) Normalize() {
	r.State = State(strings.ToLower(strings.TrimSpace(string(r.State))))
	if r.State == "" {
		r.State = StatePresent
	}
	r.Function = Function(strings.ToLower(strings.TrimSpace(string(r.Function))))
	r.Type = RecordType(strings.ToUpper(strings.TrimSpace(string(r.Type))))
	if r.Type == "" {
		r.Type = DefaultRecordType
	}
}

// Validate checks the request after Normalize. All problems are joined
// into one error wrapping ErrInvalidInput.
func (r *Request) Validate() error {
	var errs []error

	switch r.State {
	case StatePresent, StateAbsent:
	default:
		errs = append(errs, invalidInput("state", "must be present or absent, got %q", r.State))
	}

	switch r.Function {
	case FunctionRecord, FunctionZone:
	case "":
		errs = append(errs, invalidInput("function", "required"))
	default:
		errs = append(errs, invalidInput("function", "must be record or zone, got %q", r.Function))
	}

	if r.Server == "" {
		errs = append(errs, invalidInput("server", "required"))
	}
	if r.Zone == "" {
		errs = append(errs, invalidInput("zone", "required"))
	}

	if r.Function == FunctionRecord {
		if r.Name == "" {
			errs = append(errs, invalidInput("name", "required when function is record"))
		}
		if r.Data == "" {
			errs = append(errs, invalidInput("data", "required when function is record"))
		}
		if !r.Type.IsValid() {
			errs = append(errs, invalidInput("type", "unsupported record type %q", r.Type))
		}
		if r.Type == RecordTypePTR && r.Data != "" {
			if _, err := NewPTRRecord(r.Name, r.Data); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// RecordSpec returns the record addressed by the request.
func (r *Request) RecordSpec() RecordSpec {
	return RecordSpec{
		Server: r.Server,
		Zone:   r.Zone,
		Name:   r.Name,
		Type:   r.Type,
		Data:   r.Data,
	}
}

// ZoneSpec returns the zone addressed by the request.
func (r *Request) ZoneSpec() ZoneSpec {
	return ZoneSpec{Server: r.Server, Zone: r.Zone}
}
