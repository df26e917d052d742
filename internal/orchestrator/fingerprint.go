package orchestrator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/minaret-labs/minaret/internal/model"
)

// Fingerprint is a content hash over the ordered event list plus the mode
// flag. Equal fingerprints mean a reconcile would install the exact same
// entries, so it can be skipped.
func Fingerprint(schedule model.DailySchedule, modeEffective bool) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%t\n", schedule.LocationID, schedule.DateKey(), modeEffective)
	for _, e := range schedule.Events {
		fmt.Fprintf(h, "%s|%s|%s|%s\n", e.Kind, e.Name, e.AlertTime, e.SecondaryTime)
	}
	return hex.EncodeToString(h.Sum(nil))
}
