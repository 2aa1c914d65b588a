package overdue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/gestproj/internal/application/ports"
)

// DefaultPageSize is used when RunOverdueScan is given pageSize <= 0.
const DefaultPageSize = 100

// eventNamespace seeds overdue event ids.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("gestproj:"+ports.EventProjectOverdue))

// EventID is the id of the overdue event for projectID on the UTC calendar day of at. A retried
// scan on the same day reuses it, so receivers can drop repeats.
func EventID(projectID int64, at time.Time) string {
	key := strconv.FormatInt(projectID, 10) + ":" + at.UTC().Format(time.DateOnly)
	return uuid.NewSHA1(eventNamespace, []byte(key)).String()
}

// RunOverdueScan pages through every project and emits project.overdue for each non-template
// project that is late at now. Call periodically (e.g. a daily cron). A failed delivery does not
// stop the scan; every delivery error is joined into the returned error.
func RunOverdueScan(ctx context.Context, repo ports.ProjectRepository, emitter ports.EventEmitter, pageSize int, now time.Time) (emitted int, err error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var failed []error
	for offset := 0; ; offset += pageSize {
		page, err := repo.FindAll(ctx, offset, pageSize)
		if err != nil {
			return emitted, errors.Join(append(failed, err)...)
		}
		for _, p := range page {
			if p.IsTemplate() || !p.EnRetardAt(now) {
				continue
			}
			ev := ports.DomainEvent{
				ID:         EventID(p.ID, now),
				Type:       ports.EventProjectOverdue,
				EntityID:   p.ID,
				OccurredAt: now,
				Data: map[string]any{
					"numero":         p.Numero,
					"nom":            p.Nom,
					"date_echeance":  p.DateEcheance.Format(time.DateOnly),
					"days_remaining": p.DaysRemainingAt(now),
					"ecart_temps":    p.EcartTemps(),
					"responsable_id": p.ResponsableID,
				},
			}
			if e := emitter.Emit(ctx, ev); e != nil {
				failed = append(failed, fmt.Errorf("project %d: %w", p.ID, e))
				continue
			}
			emitted++
		}
		if len(page) < pageSize {
			return emitted, errors.Join(failed...)
		}
	}
}
