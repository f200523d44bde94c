package censys

// Record is the parsed body of one Censys view lookup. Every field is
// optional; absent sub-structures stay nil so callers check presence
// explicitly instead of guessing at keys.
type Record struct {
	IP        string   `json:"ip"`
	UpdatedAt string   `json:"updated_at"`
	Protocols []string `json:"protocols"`

	Err       string `json:"error"`
	ErrorType string `json:"error_type"`

	Location         *Location         `json:"location"`
	AutonomousSystem *AutonomousSystem `json:"autonomous_system"`
	Metadata         *Metadata         `json:"metadata"`

	Headers map[string]interface{} `json:"headers"`

	raw []byte
}

type Location struct {
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type AutonomousSystem struct {
	ASN          int    `json:"asn"`
	RoutedPrefix string `json:"routed_prefix"`
}

type Metadata struct {
	OSDescription string `json:"os_description"`
}

// Raw returns the response body the record was decoded from.
func (r *Record) Raw() string {
	return string(r.raw)
}
