// Package export renders request history for downstream consumers such as
// billing reconciliation and dispatch audits.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"time"

	"github.com/Medic423/medport-sub003/core/history"
)

// WriteJSON writes the history entries to w as a JSON array.
func WriteJSON(w io.Writer, entries []history.Entry) error {
	enc := json.NewEncoder(w)
	return enc.Encode(entries)
}

// WriteCSV writes the history entries to w with one row per entry.
func WriteCSV(w io.Writer, entries []history.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "request_id", "kind", "timestamp", "from_status", "to_status", "revised_arrival", "revised_pickup", "reason", "actor"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			e.ID,
			e.RequestID,
			string(e.Kind),
			e.Timestamp.Format(time.RFC3339),
			string(e.FromStatus),
			string(e.ToStatus),
			formatTime(e.RevisedArrival),
			formatTime(e.RevisedPickup),
			e.Reason,
			e.Actor,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
