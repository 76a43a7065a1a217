package audit

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Severity is an RFC5424 severity.
type Severity int

const (
	SeverityWarning Severity = 4
	SeverityNotice  Severity = 5
	SeverityInfo    Severity = 6
)

// Syslog facilities of relief events.
const (
	FacilityAuth     = 4
	FacilityAuthPriv = 10
)

// enterpriseID qualifies every SD-ID. 32473 is reserved for documentation
// (RFC 5612).
const enterpriseID = "32473"

// Structured data IDs.
const (
	SDIDSession  = "session@" + enterpriseID
	SDIDTarget   = "target@" + enterpriseID
	SDIDOutcome  = "outcome@" + enterpriseID
	SDIDClient   = "client@" + enterpriseID
	SDIDWorkflow = "workflow@" + enterpriseID
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Event is something worth auditing.
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Entry is one audit record as it is written out and saved.
type Entry struct {
	Facility  int
	Severity  Severity
	Timestamp time.Time
	Hostname  string
	AppName   string
	ProcID    string
	MsgID     string
	SData     map[string]map[string]string
	Message   string
}

// Priority is the PRI header value.
func (e Entry) Priority() int {
	return e.Facility*8 + int(e.Severity)
}

// String renders e as an RFC5424 line without a trailing newline.
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%d>1 %s %s %s %s %s ",
		e.Priority(),
		e.Timestamp.UTC().Format(timestampLayout),
		headerField(e.Hostname),
		headerField(e.AppName),
		headerField(e.ProcID),
		headerField(e.MsgID),
	)
	writeStructuredData(&b, e.SData)
	if e.Message != "" {
		b.WriteByte(' ')
		b.WriteString(e.Message)
	}
	return b.String()
}

// headerField replaces an empty header field with the NILVALUE.
func headerField(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

var paramEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `]`, `\]`)

// writeStructuredData writes elements and params in name order so equal
// entries render identically.
func writeStructuredData(b *strings.Builder, sd map[string]map[string]string) {
	if len(sd) == 0 {
		b.WriteByte('-')
		return
	}
	for _, id := range sortedKeys(sd) {
		b.WriteByte('[')
		b.WriteString(id)
		params := sd[id]
		for _, name := range sortedKeys(params) {
			fmt.Fprintf(b, ` %s="%s"`, name, paramEscaper.Replace(params[name]))
		}
		b.WriteByte(']')
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
