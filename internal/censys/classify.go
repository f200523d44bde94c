package censys

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/azeraturan/spiderfoot/internal/model"
)

// updatedAtLayout matches Censys timestamps, e.g. 2016-12-24T07:25:35+00:00.
const updatedAtLayout = "2006-01-02T15:04:05+00:00"

// RecordTime parses the record's updated_at field as UTC. A missing
// field counts as the epoch.
func RecordTime(rec *Record) (time.Time, error) {
	if rec.UpdatedAt == "" {
		return time.Unix(0, 0).UTC(), nil
	}
	t, err := time.ParseInLocation(updatedAtLayout, rec.UpdatedAt, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad updated_at %q: %w", rec.UpdatedAt, err)
	}
	return t.UTC(), nil
}

// Stale reports whether a record is older than the age limit.
// limitDays == 0 disables filtering. The boundary is exclusive: a
// record exactly limitDays old is still fresh.
func Stale(rec *Record, limitDays int, now time.Time) (bool, error) {
	if limitDays <= 0 {
		return false, nil
	}
	ts, err := RecordTime(rec)
	if err != nil {
		return false, err
	}
	return now.Sub(ts) > time.Duration(limitDays)*24*time.Hour, nil
}

// Finding is one classified fact extracted from a record, not yet bound
// to a parent event.
type Finding struct {
	Type         string
	Data         string
	ActualSource string
}

// Classify maps a record that survived age filtering to its findings.
// The raw record always comes first. A problem extracting one
// sub-structure is reported without suppressing findings from the
// others.
func Classify(rec *Record, addr string) ([]Finding, []error) {
	findings := []Finding{{Type: model.TypeRawRIRData, Data: rec.Raw()}}
	var errs []error

	if rec.Location != nil {
		parts := make([]string, 0, 4)
		for _, p := range []string{
			rec.Location.City,
			rec.Location.Province,
			rec.Location.PostalCode,
			rec.Location.Country,
		} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if loc := strings.Join(parts, ", "); loc != "" {
			findings = append(findings, Finding{Type: model.TypeGeoInfo, Data: loc})
		}
	}

	if rec.Headers != nil {
		b, err := json.Marshal(rec.Headers)
		if err != nil {
			errs = append(errs, fmt.Errorf("headers: %w", err))
		} else {
			// headers are attributed to the exact host queried
			findings = append(findings, Finding{
				Type:         model.TypeWebserverHTTPHeaders,
				Data:         string(b),
				ActualSource: addr,
			})
		}
	}

	if as := rec.AutonomousSystem; as != nil {
		findings = append(findings, Finding{Type: model.TypeBGPASMember, Data: strconv.Itoa(as.ASN)})
		if as.RoutedPrefix != "" {
			findings = append(findings, Finding{Type: model.TypeNetblockMember, Data: as.RoutedPrefix})
		} else {
			errs = append(errs, fmt.Errorf("autonomous_system: missing routed_prefix"))
		}
	}

	// port findings need the record's own ip field
	if rec.IP != "" {
		for _, p := range rec.Protocols {
			port := p
			if i := strings.IndexByte(p, '/'); i >= 0 {
				port = p[:i]
			}
			findings = append(findings, Finding{Type: model.TypeTCPPortOpen, Data: rec.IP + ":" + port})
		}
	}

	if rec.Metadata != nil && rec.Metadata.OSDescription != "" {
		findings = append(findings, Finding{Type: model.TypeOperatingSystem, Data: rec.Metadata.OSDescription})
	}

	return findings, errs
}
