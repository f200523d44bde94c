package model

import (
	"net/netip"
	"time"

	"github.com/google/uuid"
)

// Event types the enricher consumes.
const (
	TypeIPAddress     = "IP_ADDRESS"
	TypeInternetName  = "INTERNET_NAME"
	TypeNetblockOwner = "NETBLOCK_OWNER"
)

// Event types the enricher produces.
const (
	TypeBGPASMember          = "BGP_AS_MEMBER"
	TypeTCPPortOpen          = "TCP_PORT_OPEN"
	TypeOperatingSystem      = "OPERATING_SYSTEM"
	TypeWebserverHTTPHeaders = "WEBSERVER_HTTPHEADERS"
	TypeNetblockMember       = "NETBLOCK_MEMBER"
	TypeGeoInfo              = "GEOINFO"
	TypeRawRIRData           = "RAW_RIR_DATA"
)

// Event is one fact flowing through the pipeline: either an input
// target or a finding derived from one. ActualSource, when set, names
// the exact address a finding was observed on, which may differ from
// the causal parent chain.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Data         string    `json:"data"`
	Module       string    `json:"module"`
	ParentID     string    `json:"parent_id,omitempty"`
	ActualSource string    `json:"actual_source,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	parent *Event
}

func NewEvent(eventType, data, module string, parent *Event) *Event {
	e := &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Data:      data,
		Module:    module,
		CreatedAt: time.Now().UTC(),
		parent:    parent,
	}
	if parent != nil {
		e.ParentID = parent.ID
	}
	return e
}

// Parent returns the causal parent event, nil for root targets.
func (e *Event) Parent() *Event {
	return e.parent
}

func (e *Event) Key() string {
	return e.Type + ":" + e.Data
}

// DetectTargetType classifies a raw target string into the input event
// type it should enter the pipeline as.
func DetectTargetType(s string) string {
	if _, err := netip.ParseAddr(s); err == nil {
		return TypeIPAddress
	}
	if _, err := netip.ParsePrefix(s); err == nil {
		return TypeNetblockOwner
	}
	return TypeInternetName
}
