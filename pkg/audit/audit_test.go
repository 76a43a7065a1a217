package audit

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefops/relief/pkg/config"
	"github.com/reliefops/relief/pkg/logging"
)

var settings = Settings{AppName: "relief", Hostname: "relief-01", ProcID: "4242"}

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 10, 30, 0, 123e6, time.UTC)
}

type recordingSink struct {
	entries []Entry
	err     error
}

func (s *recordingSink) Save(_ context.Context, e Entry) error {
	s.entries = append(s.entries, e)
	return s.err
}

func TestAuditorLogLine(t *testing.T) {
	var buf bytes.Buffer
	a := New(settings, WithWriter(&buf), WithClock(fixedClock))

	a.Log(context.Background(), LoginEvent{
		Username:  "admin",
		Role:      "Admin",
		Principal: "relief_admin",
		ClientIP:  "192.168.1.1",
		Success:   true,
	})

	assert.Equal(t,
		`<86>1 2024-06-01T10:30:00.123Z relief-01 relief 4242 login `+
			`[client@32473 ip="192.168.1.1"][session@32473 principal="relief_admin" role="Admin" user="admin"] `+
			"admin logged in as Admin using principal relief_admin\n",
		buf.String())
}

func TestAuditorAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	sink := &recordingSink{}
	a := New(settings, WithWriter(&buf), WithSink(sink), WithClock(fixedClock))

	ctx := context.WithValue(context.Background(), logging.ReqIDKey, "req-7")
	a.Log(ctx, LogoutEvent{Username: "viewer", ClientIP: "10.0.0.1"})

	require.Len(t, sink.entries, 1)
	assert.Equal(t, map[string]string{"ip": "10.0.0.1", "req_id": "req-7"}, sink.entries[0].SData[SDIDClient])
	assert.Contains(t, buf.String(), `[client@32473 ip="10.0.0.1" req_id="req-7"]`)
}

func TestAuditorWithoutWriter(t *testing.T) {
	sink := &recordingSink{err: errors.New("relation does not exist")}
	a := New(settings, WithWriter(nil), WithSink(sink))

	assert.NotPanics(t, func() {
		a.Log(context.Background(), LogoutEvent{Username: "admin"})
	})
	assert.Len(t, sink.entries, 1)

	var nilAuditor *Auditor
	assert.NotPanics(t, func() {
		nilAuditor.Log(context.Background(), LogoutEvent{Username: "admin"})
	})
}

func TestEntryString(t *testing.T) {
	e := Entry{
		Facility:  FacilityAuth,
		Severity:  SeverityNotice,
		Timestamp: fixedClock(),
		MsgID:     "record",
		SData: map[string]map[string]string{
			SDIDTarget: {"entity": `Victim "A]`, "victim_id": `9\1`},
		},
	}

	assert.Equal(t, 37, e.Priority())
	assert.Equal(t,
		`<37>1 2024-06-01T10:30:00.123Z - - - record [target@32473 entity="Victim \"A\]" victim_id="9\\1"]`,
		e.String())

	e.SData = nil
	e.Message = "done"
	assert.Equal(t, `<37>1 2024-06-01T10:30:00.123Z - - - record - done`, e.String())
}

func TestSettingsFrom(t *testing.T) {
	cfg := &config.ReliefConfig{AuditAppName: "relief-north", AuditHostname: "camp-gw"}

	s := SettingsFrom(cfg)
	assert.Equal(t, "relief-north", s.AppName)
	assert.Equal(t, "camp-gw", s.Hostname)
	assert.NotEmpty(t, s.ProcID)

	cfg.AuditHostname = ""
	assert.NotEqual(t, "camp-gw", SettingsFrom(cfg).Hostname)
}

func TestFromConfigOutputOff(t *testing.T) {
	sink := &recordingSink{}
	a := FromConfig(&config.ReliefConfig{AuditOutput: "off", AuditAppName: "relief"}, sink)

	assert.Nil(t, a.w)
	a.Log(context.Background(), LogoutEvent{Username: "admin"})
	require.Len(t, sink.entries, 1)
	assert.Equal(t, "relief", sink.entries[0].AppName)
}

func TestLoginEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   LoginEvent
		wantMsg string
		wantSev Severity
	}{
		{
			name:    "success",
			event:   LoginEvent{Username: "viewer", Role: "Viewer", Principal: "relief_viewer", Success: true},
			wantMsg: "viewer logged in as Viewer using principal relief_viewer",
			wantSev: SeverityInfo,
		},
		{
			name:    "bad password",
			event:   LoginEvent{Username: "viewer", ErrorMessage: "invalid username or password"},
			wantMsg: "viewer failed to log in: invalid username or password",
			wantSev: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.event.Message())
			assert.Equal(t, tt.wantSev, tt.event.Severity())
			assert.Equal(t, FacilityAuthPriv, tt.event.Facility())
			_, hasPrincipal := tt.event.StructuredData()[SDIDSession]["principal"]
			assert.Equal(t, tt.event.Success, hasPrincipal)
		})
	}
}

func TestRecordEvent(t *testing.T) {
	event := RecordEvent{
		Username:  "admin",
		Principal: "relief_admin",
		Entity:    "Stocked_At",
		Action:    "delete",
		Key:       map[string]string{"resource_id": "401", "camp_id": "1"},
		Success:   true,
	}

	assert.Equal(t, "admin performed delete on Stocked_At (camp_id=1, resource_id=401)", event.Message())
	assert.Equal(t, SeverityNotice, event.Severity())

	sd := event.StructuredData()
	assert.Equal(t, "Stocked_At", sd[SDIDTarget]["entity"])
	assert.Equal(t, "1", sd[SDIDTarget]["camp_id"])
	assert.Equal(t, "success", sd[SDIDOutcome]["result"])

	event.Success = false
	event.ErrorMessage = "constraint violation"
	assert.Contains(t, event.Message(), "failed to delete Stocked_At")
	assert.Equal(t, "failure", event.StructuredData()[SDIDOutcome]["result"])
}

func TestWorkflowEvent(t *testing.T) {
	event := WorkflowEvent{
		Username:     "operator",
		Principal:    "relief_operator",
		Operation:    "distribute_aid",
		Params:       map[string]string{"qty": "4"},
		ErrorMessage: "insufficient stock",
	}

	assert.Equal(t, "operator failed to run distribute_aid: insufficient stock", event.Message())
	assert.Equal(t, "4", event.StructuredData()[SDIDWorkflow]["qty"])
}

func TestLogoutEvent(t *testing.T) {
	event := LogoutEvent{Username: "admin", ClientIP: "10.0.0.1"}
	assert.Equal(t, "logout", event.MessageID())
	assert.Equal(t, "admin logged out", event.Message())
}
