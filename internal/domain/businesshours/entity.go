package businesshours

import (
	"time"

	"github.com/google/uuid"
)

// Hours is one weekday's open window for a tenant. Times are minutes from
// midnight; CloseMinutes <= OpenMinutes means the window runs overnight into
// the next calendar day (e.g. open 20:00, close 04:00).
type Hours struct {
	TenantID     uuid.UUID `db:"tenant_id" json:"-"`
	Weekday      int       `db:"weekday" json:"weekday"` // 0 = Sunday .. 6 = Saturday
	OpenMinutes  int       `db:"open_minutes" json:"open_minutes"`
	CloseMinutes int       `db:"close_minutes" json:"close_minutes"`
	Closed       bool      `db:"closed" json:"closed"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsOvernight reports whether the window spans past midnight
func (h Hours) IsOvernight() bool {
	return !h.Closed && h.CloseMinutes <= h.OpenMinutes
}

// WindowOn resolves the open window for the calendar day containing midnight
// `day`. The second return is false when the day is closed.
func (h Hours) WindowOn(day time.Time) (start, end time.Time, ok bool) {
	if h.Closed {
		return time.Time{}, time.Time{}, false
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	start = midnight.Add(time.Duration(h.OpenMinutes) * time.Minute)
	end = midnight.Add(time.Duration(h.CloseMinutes) * time.Minute)
	if h.IsOvernight() {
		end = end.Add(24 * time.Hour)
	}
	return start, end, true
}

// Week holds one Hours entry per weekday, indexed by time.Weekday
type Week [7]Hours

// On returns the hours for the given weekday
func (w Week) On(day time.Weekday) Hours {
	return w[int(day)]
}

// DefaultWeek returns a week open 10:00-22:00 every day, used when a tenant
// has not configured hours yet
func DefaultWeek(tenantID uuid.UUID) Week {
	var week Week
	for i := range week {
		week[i] = Hours{
			TenantID:     tenantID,
			Weekday:      i,
			OpenMinutes:  10 * 60,
			CloseMinutes: 22 * 60,
		}
	}
	return week
}
