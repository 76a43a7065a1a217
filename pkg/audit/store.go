package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/session"
)

const insertEntry = `INSERT INTO audit_messages
	(facility, severity, timestamp, hostname, appname, procid, msgid, sdata, message)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?::jsonb, ?)`

// StoreSink saves entries to audit_messages, connecting as its own
// principal.
type StoreSink struct {
	conn      db.Connector
	principal session.Principal
}

var _ Sink = (*StoreSink)(nil)

func NewStoreSink(conn db.Connector, p session.Principal) *StoreSink {
	return &StoreSink{conn: conn, principal: p}
}

func (s *StoreSink) Save(ctx context.Context, e Entry) error {
	sdata, err := json.Marshal(e.SData)
	if err != nil {
		return fmt.Errorf("audit structured data: %w", err)
	}
	return db.WithConnection(ctx, s.conn, s.principal, func(tx *gorm.DB) error {
		return tx.Exec(insertEntry,
			e.Facility,
			int(e.Severity),
			e.Timestamp,
			e.Hostname,
			e.AppName,
			e.ProcID,
			e.MsgID,
			string(sdata),
			e.Message,
		).Error
	})
}
