package service

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ── ICS parser ──────────────────────────────────────────────
//
// Turns an iCalendar (RFC 5545) export of a class timetable into weekly slots.
//
//   - DTSTART gives the weekday and start time, DTEND the end time
//   - a recurring lesson exported as many single events collapses into one slot
//   - times are converted to the school timezone before taking HH:MM
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize = 2 * 1024 * 1024 // 2MB
	schoolTimezone = "Asia/Jakarta"
)

// icsSlot one weekly lesson read from a VEVENT
type icsSlot struct {
	Summary   string
	DayOfWeek int // 1=Monday … 7=Sunday
	StartTime string
	EndTime   string
}

// ParseICSSlots parses VEVENTs into distinct weekly slots ordered by day and
// start time. Events without SUMMARY or a usable DTSTART are dropped.
func ParseICSSlots(reader io.Reader) ([]icsSlot, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("parse ics: %w", err)
	}

	loc, err := time.LoadLocation(schoolTimezone)
	if err != nil {
		loc = time.FixedZone("WIB", 7*60*60)
	}

	var slots []icsSlot
	for _, evt := range cal.Events() {
		slot, ok := parseVEvent(evt, loc)
		if !ok {
			continue
		}
		slots = append(slots, slot)
	}

	slots = dedupeSlots(slots)
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slots[i].StartTime < slots[j].StartTime
	})
	return slots, nil
}

func parseVEvent(evt *ics.VEvent, loc *time.Location) (icsSlot, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return icsSlot{}, false
	}

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return icsSlot{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil || !dtEnd.After(dtStart) {
		// lessons without DTEND default to one 40-minute JP
		dtEnd = dtStart.Add(40 * time.Minute)
	}

	return icsSlot{
		Summary:   strings.TrimSpace(summary.Value),
		DayOfWeek: goWeekdayToISO(dtStart.Weekday()),
		StartTime: dtStart.Format("15:04"),
		EndTime:   dtEnd.Format("15:04"),
	}, true
}

// dedupeSlots keeps the first event per summary+day+start+end
func dedupeSlots(slots []icsSlot) []icsSlot {
	seen := make(map[icsSlot]bool, len(slots))
	result := make([]icsSlot, 0, len(slots))
	for _, s := range slots {
		key := icsSlot{Summary: strings.ToLower(s.Summary), DayOfWeek: s.DayOfWeek, StartTime: s.StartTime, EndTime: s.EndTime}
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, s)
	}
	return result
}

// ── helpers ──

// goWeekdayToISO time.Weekday (0=Sunday) → ISO 8601 (1=Monday … 7=Sunday)
func goWeekdayToISO(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// parseICSDateTime reads a DATE-TIME property, honouring UTC suffix and TZID
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range []string{"20060102T150405Z", "20060102T150405"} {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			return t.In(loc), nil
		}
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}

	return time.Time{}, fmt.Errorf("unsupported date-time %q", val)
}
