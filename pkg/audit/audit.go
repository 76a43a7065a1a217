package audit

import (
	"context"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reliefops/relief/pkg/config"
	"github.com/reliefops/relief/pkg/logging"
)

// Settings are the header fields shared by every entry.
type Settings struct {
	AppName  string
	Hostname string
	ProcID   string
}

// SettingsFrom takes APP-NAME and HOSTNAME from cfg. HOSTNAME falls back to
// the machine name and PROCID is the process id.
func SettingsFrom(cfg *config.ReliefConfig) Settings {
	host := cfg.AuditHostname
	if host == "" {
		host, _ = os.Hostname()
	}
	return Settings{
		AppName:  cfg.AuditAppName,
		Hostname: host,
		ProcID:   strconv.Itoa(os.Getpid()),
	}
}

// Sink saves entries somewhere durable.
type Sink interface {
	Save(ctx context.Context, e Entry) error
}

// Auditor turns events into entries, writes them as lines and hands them
// to its sink. A nil Auditor records nothing.
type Auditor struct {
	settings Settings
	now      func() time.Time
	sink     Sink

	mu sync.Mutex
	w  io.Writer
}

type Option func(*Auditor)

// WithWriter sends lines to w instead of stdout. A nil w drops them.
func WithWriter(w io.Writer) Option {
	return func(a *Auditor) { a.w = w }
}

// WithSink saves every entry to s as well.
func WithSink(s Sink) Option {
	return func(a *Auditor) { a.sink = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Auditor) { a.now = now }
}

func New(settings Settings, opts ...Option) *Auditor {
	a := &Auditor{settings: settings, now: time.Now, w: os.Stdout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FromConfig builds the server's Auditor. audit_output selects the line
// destination; sink may be nil.
func FromConfig(cfg *config.ReliefConfig, sink Sink) *Auditor {
	var w io.Writer = os.Stdout
	switch cfg.AuditOutput {
	case "stderr":
		w = os.Stderr
	case "off":
		w = nil
	}
	return New(SettingsFrom(cfg), WithWriter(w), WithSink(sink))
}

// Entry builds the entry for event. The request id in ctx, if any, is
// added to the client element.
func (a *Auditor) Entry(ctx context.Context, event Event) Entry {
	sd := event.StructuredData()
	if id := logging.RequestID(ctx); id != "" {
		if sd == nil {
			sd = map[string]map[string]string{}
		}
		client := map[string]string{"req_id": id}
		for k, v := range sd[SDIDClient] {
			client[k] = v
		}
		sd[SDIDClient] = client
	}
	return Entry{
		Facility:  event.Facility(),
		Severity:  event.Severity(),
		Timestamp: a.now().UTC(),
		Hostname:  a.settings.Hostname,
		AppName:   a.settings.AppName,
		ProcID:    a.settings.ProcID,
		MsgID:     event.MessageID(),
		SData:     sd,
		Message:   event.Message(),
	}
}

// Log records event. Write and save failures are logged, never returned.
func (a *Auditor) Log(ctx context.Context, event Event) {
	if a == nil {
		return
	}
	entry := a.Entry(ctx, event)
	logger := zerolog.Ctx(ctx)

	if a.w != nil {
		a.mu.Lock()
		_, err := io.WriteString(a.w, entry.String()+"\n")
		a.mu.Unlock()
		if err != nil {
			logger.Warn().Err(err).Str("msgid", entry.MsgID).Msg("audit line not written")
		}
	}

	if a.sink != nil {
		if err := a.sink.Save(ctx, entry); err != nil {
			logger.Warn().Err(err).Str("msgid", entry.MsgID).Msg("audit entry not saved")
		}
	}
}
