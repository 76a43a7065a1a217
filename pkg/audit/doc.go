// Package audit records logins, logouts, record mutations and workflow runs.
//
// An Auditor renders each Event as an RFC5424 line. APP-NAME and HOSTNAME
// come from the audit_app_name and audit_hostname settings, PROCID is the
// server's process id, and the request id of the triggering request is
// added to the client element. When audit_user is configured the entry is
// also saved to the audit_messages table through a StoreSink, which
// connects as that principal.
//
//	a := audit.FromConfig(cfg, nil)
//	a.Log(r.Context(), audit.LogoutEvent{Username: "admin", ClientIP: ip})
package audit
