package database

import (
	"fmt"
	"strings"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const (
	tableUser    = "user"
	tableMessage = "chat_message"
	tableRoom    = "event_chat_room"
	tableBooking = "booking"
)

// splitRecordID splits "table:key" and checks the table. Ids are always
// passed to SurrealQL as type::thing($tb, $key) so keys are never parsed.
func splitRecordID(id, table string) (string, error) {
	tb, key, ok := strings.Cut(id, ":")
	if !ok || key == "" || tb != table {
		return "", NewDBError(ErrInvalidID, fmt.Sprintf("expected %s:<key>, got %q", table, id))
	}
	return strings.Trim(key, "⟨⟩`"), nil
}

// recordString renders a record id as "table:key".
func recordString(rid *surrealmodels.RecordID) string {
	if rid == nil {
		return ""
	}
	return fmt.Sprintf("%s:%v", rid.Table, rid.ID)
}

func datetime(t time.Time) *surrealmodels.CustomDateTime {
	return &surrealmodels.CustomDateTime{Time: t.UTC()}
}

func timeOf(dt *surrealmodels.CustomDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	return dt.Time.UTC()
}

// timeNow is replaced in tests.
var timeNow = time.Now
