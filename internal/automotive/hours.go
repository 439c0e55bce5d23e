package automotive

import (
	"encoding/json"

	"github.com/angelmondragon/iacol-backend/pkg/fields"
)

// Span is one open/close pair in HH:MM.
type Span struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Hours maps lowercase English weekday names to their span. A missing day is closed.
type Hours map[string]Span

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

// Schedule is the six-field authoring form of business hours.
type Schedule struct {
	WeekdayOpen   string `json:"weekday_open"`
	WeekdayClose  string `json:"weekday_close"`
	SaturdayOpen  string `json:"saturday_open"`
	SaturdayClose string `json:"saturday_close"`
	SundayOpen    string `json:"sunday_open"`
	SundayClose   string `json:"sunday_close"`
}

// Compress expands the schedule into the stored map. Every weekday receives the
// same span, so per-day differences cannot be represented.
func (s Schedule) Compress() Hours {
	hours := Hours{}
	if s.WeekdayOpen != "" && s.WeekdayClose != "" {
		for _, day := range weekdays {
			hours[day] = Span{Open: s.WeekdayOpen, Close: s.WeekdayClose}
		}
	}
	if s.SaturdayOpen != "" && s.SaturdayClose != "" {
		hours["saturday"] = Span{Open: s.SaturdayOpen, Close: s.SaturdayClose}
	}
	if s.SundayOpen != "" && s.SundayClose != "" {
		hours["sunday"] = Span{Open: s.SundayOpen, Close: s.SundayClose}
	}
	return hours
}

// ScheduleFrom reads the form back out of a stored map. Monday stands in for
// the whole week.
func ScheduleFrom(h Hours) Schedule {
	return Schedule{
		WeekdayOpen:   h["monday"].Open,
		WeekdayClose:  h["monday"].Close,
		SaturdayOpen:  h["saturday"].Open,
		SaturdayClose: h["saturday"].Close,
		SundayOpen:    h["sunday"].Open,
		SundayClose:   h["sunday"].Close,
	}
}

func decodeHours(raw []byte) Hours {
	hours := Hours{}
	if len(raw) == 0 {
		return hours
	}
	if err := json.Unmarshal(raw, &hours); err != nil {
		return Hours{}
	}
	return hours
}

// validate checks each pair for completeness and format only. A close at or
// before the open time is an overnight span.
func (s Schedule) validate(add func(field, msg string)) {
	pair := func(openField, open, closeField, close string) {
		switch {
		case open == "" && close == "":
			return
		case open == "":
			add(openField, "Indique la hora de apertura.")
		case close == "":
			add(closeField, "Indique la hora de cierre.")
		}
		if open != "" && !fields.HHMM(open) {
			add(openField, "Formato de hora inválido (HH:MM).")
		}
		if close != "" && !fields.HHMM(close) {
			add(closeField, "Formato de hora inválido (HH:MM).")
		}
	}
	pair("weekday_open", s.WeekdayOpen, "weekday_close", s.WeekdayClose)
	pair("saturday_open", s.SaturdayOpen, "saturday_close", s.SaturdayClose)
	pair("sunday_open", s.SundayOpen, "sunday_close", s.SundayClose)
}
