package calendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

// Safety cap on occurrences expanded from one RRULE.
const maxOccurrencesPerEvent = 1000

// ICSCalendar reads busy events from an iCalendar feed (local file or
// http(s) URL). The feed is re-read on every call.
type ICSCalendar struct {
	source string
	client *http.Client
}

func NewICSCalendar(source string) *ICSCalendar {
	return &ICSCalendar{
		source: source,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *ICSCalendar) load(ctx context.Context) (*ical.Calendar, error) {
	var body []byte

	if strings.HasPrefix(c.source, "http://") || strings.HasPrefix(c.source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.source, nil)
		if err != nil {
			return nil, fmt.Errorf("create ics request: %w", err)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch ics: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch ics: unexpected status %d", resp.StatusCode)
		}
		if body, err = io.ReadAll(resp.Body); err != nil {
			return nil, fmt.Errorf("read ics body: %w", err)
		}
	} else {
		var err error
		if body, err = os.ReadFile(c.source); err != nil {
			return nil, fmt.Errorf("read ics file %q: %w", c.source, err)
		}
	}

	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse ics: %w", err)
	}
	return cal, nil
}

// Timezone returns the feed's X-WR-TIMEZONE, or nil when absent or unknown.
func (c *ICSCalendar) Timezone(ctx context.Context, calendarID string) (*time.Location, error) {
	cal, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	return calendarLocation(cal), nil
}

func calendarLocation(cal *ical.Calendar) *time.Location {
	for _, p := range cal.CalendarProperties {
		if !strings.EqualFold(p.IANAToken, "X-WR-TIMEZONE") {
			continue
		}
		loc, err := time.LoadLocation(strings.TrimSpace(p.Value))
		if err != nil {
			log.Printf("ics unknown timezone %q: %v", p.Value, err)
			return nil
		}
		return loc
	}
	return nil
}

// ListEvents returns events and expanded recurrences overlapping
// [timeMin, timeMax). Cancelled events are omitted; TRANSP:TRANSPARENT
// events are returned with Transparent set.
func (c *ICSCalendar) ListEvents(
	ctx context.Context,
	calendarID string,
	timeMin time.Time,
	timeMax time.Time,
) (_ []domain.CalendarEvent, err error) {
	defer obs.Time(ctx, "calendar.ics.listEvents")(&err)

	cal, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	loc := calendarLocation(cal)
	if loc == nil {
		loc = time.UTC
	}

	out := make([]domain.CalendarEvent, 0)
	for _, ve := range cal.Events() {
		evs, err := expandVEvent(ve, loc, timeMin, timeMax)
		if err != nil {
			// Log and skip this event, but keep parsing others.
			log.Printf("req_id=%s ics vevent skipped calendar=%q: %v", obs.RequestID(ctx), calendarID, err)
			continue
		}
		out = append(out, evs...)
	}

	return out, nil
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func expandVEvent(ve *ical.VEvent, loc *time.Location, timeMin, timeMax time.Time) ([]domain.CalendarEvent, error) {
	if strings.EqualFold(propValue(ve, "STATUS"), "CANCELLED") {
		return nil, nil
	}

	var start, end time.Time
	var err error
	if isAllDay(ve) {
		if start, err = ve.GetAllDayStartAt(); err != nil {
			return nil, fmt.Errorf("dtstart: %w", err)
		}
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		end = start.AddDate(0, 0, 1)
		if e, err := ve.GetAllDayEndAt(); err == nil {
			if e = time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, loc); e.After(start) {
				end = e
			}
		}
	} else {
		if start, err = ve.GetStartAt(); err != nil {
			return nil, fmt.Errorf("dtstart: %w", err)
		}
		if end, err = ve.GetEndAt(); err != nil {
			end = start
		}
	}

	if end.Before(start) {
		return nil, fmt.Errorf("dtend %s before dtstart %s", end, start)
	}

	base := domain.CalendarEvent{
		Summary:     propValue(ve, ical.ComponentPropertySummary),
		Location:    propValue(ve, ical.ComponentPropertyLocation),
		Transparent: strings.EqualFold(propValue(ve, "TRANSP"), "TRANSPARENT"),
	}

	raw := propValue(ve, ical.ComponentPropertyRrule)
	if raw == "" {
		if !overlaps(start, end, timeMin, timeMax) {
			return nil, nil
		}
		base.Start, base.End = start, end
		return []domain.CalendarEvent{base}, nil
	}

	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, fmt.Errorf("parse rrule %q: %w", raw, err)
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if ex, err := parseICSTime(strings.TrimSpace(part), start.Location()); err == nil {
				set.ExDate(ex)
			}
		}
	}

	dur := end.Sub(start)
	// Widen the lower bound so occurrences that began earlier but are still running are kept.
	occStarts := set.Between(timeMin.Add(-dur).In(start.Location()), timeMax.In(start.Location()), true)
	if len(occStarts) > maxOccurrencesPerEvent {
		occStarts = occStarts[:maxOccurrencesPerEvent]
	}

	out := make([]domain.CalendarEvent, 0, len(occStarts))
	for _, s := range occStarts {
		e := s.Add(dur)
		if !overlaps(s, e, timeMin, timeMax) {
			continue
		}
		ev := base
		ev.Start, ev.End = s, e
		out = append(out, ev)
	}
	return out, nil
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// parseICSTime parses a basic DATE or DATE-TIME value.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}
