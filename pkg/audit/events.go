package audit

import (
	"fmt"
	"sort"
	"strings"
)

// LoginEvent records a login attempt
type LoginEvent struct {
	Username     string
	Role         string
	Principal    string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e LoginEvent) MessageID() string {
	return "login"
}

func (e LoginEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s logged in as %s using principal %s", e.Username, e.Role, e.Principal)
	}
	msg := fmt.Sprintf("%s failed to log in", e.Username)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e LoginEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e LoginEvent) Facility() int {
	return FacilityAuthPriv
}

func (e LoginEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDSession: {
			"user": e.Username,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
	}
	if e.Success {
		sd[SDIDSession]["role"] = e.Role
		sd[SDIDSession]["principal"] = e.Principal
	}
	return sd
}

// LogoutEvent records a logout
type LogoutEvent struct {
	Username string
	ClientIP string
}

func (e LogoutEvent) MessageID() string {
	return "logout"
}

func (e LogoutEvent) Message() string {
	return fmt.Sprintf("%s logged out", e.Username)
}

func (e LogoutEvent) Severity() Severity {
	return SeverityInfo
}

func (e LogoutEvent) Facility() int {
	return FacilityAuth
}

func (e LogoutEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSession: {"user": e.Username},
		SDIDClient:  {"ip": e.ClientIP},
	}
}

// RecordEvent records a generic record mutation
type RecordEvent struct {
	Username     string
	Principal    string
	ClientIP     string
	Entity       string
	Action       string
	Key          map[string]string
	Success      bool
	ErrorMessage string
}

func (e RecordEvent) MessageID() string {
	return "record"
}

func (e RecordEvent) Message() string {
	target := e.Entity
	if key := formatKey(e.Key); key != "" {
		target += " " + key
	}
	if e.Success {
		return fmt.Sprintf("%s performed %s on %s", e.Username, e.Action, target)
	}
	msg := fmt.Sprintf("%s failed to %s %s", e.Username, e.Action, target)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e RecordEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e RecordEvent) Facility() int {
	return FacilityAuth
}

func (e RecordEvent) StructuredData() map[string]map[string]string {
	subject := map[string]string{"entity": e.Entity}
	for k, v := range e.Key {
		subject[k] = v
	}
	return map[string]map[string]string{
		SDIDSession: {"user": e.Username, "principal": e.Principal},
		SDIDTarget:  subject,
		SDIDOutcome: {"operation": e.Action, "result": result(e.Success)},
		SDIDClient:  {"ip": e.ClientIP},
	}
}

// WorkflowEvent records a workflow invocation
type WorkflowEvent struct {
	Username     string
	Principal    string
	ClientIP     string
	Operation    string
	Params       map[string]string
	Success      bool
	ErrorMessage string
}

func (e WorkflowEvent) MessageID() string {
	return "workflow"
}

func (e WorkflowEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s ran %s", e.Username, e.Operation)
	}
	msg := fmt.Sprintf("%s failed to run %s", e.Username, e.Operation)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e WorkflowEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e WorkflowEvent) Facility() int {
	return FacilityAuth
}

func (e WorkflowEvent) StructuredData() map[string]map[string]string {
	params := map[string]string{"operation": e.Operation}
	for k, v := range e.Params {
		params[k] = v
	}
	return map[string]map[string]string{
		SDIDSession:  {"user": e.Username, "principal": e.Principal},
		SDIDWorkflow: params,
		SDIDOutcome:  {"operation": e.Operation, "result": result(e.Success)},
		SDIDClient:   {"ip": e.ClientIP},
	}
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func formatKey(key map[string]string) string {
	if len(key) == 0 {
		return ""
	}
	names := make([]string, 0, len(key))
	for k := range key {
		names = append(names, k)
	}
	sort.Strings(names)
	pairs := make([]string, len(names))
	for i, k := range names {
		pairs[i] = k + "=" + key[k]
	}
	return "(" + strings.Join(pairs, ", ") + ")"
}
