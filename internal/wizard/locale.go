package wizard

import (
	"fmt"
	"time"
)

// Locale selects the weekday/month tables used in summaries.
type Locale string

const (
	LocaleEnUS Locale = "en-US"
	LocalePtBR Locale = "pt-BR"
	LocaleEs   Locale = "es"
)

type calendarNames struct {
	weekdays [7]string  // indexed by time.Weekday, Sunday first
	months   [12]string // indexed by time.Month - 1
	format   func(weekday string, day int, month string, year int) string
}

var calendars = map[Locale]calendarNames{
	LocaleEnUS: {
		weekdays: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		format: func(weekday string, day int, month string, year int) string {
			return fmt.Sprintf("%s, %s %d, %d", weekday, month, day, year)
		},
	},
	LocalePtBR: {
		weekdays: [7]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"},
		months: [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
			"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
		format: func(weekday string, day int, month string, year int) string {
			return fmt.Sprintf("%s, %d de %s de %d", weekday, day, month, year)
		},
	},
	LocaleEs: {
		weekdays: [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		months: [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		format: func(weekday string, day int, month string, year int) string {
			return fmt.Sprintf("%s, %d de %s de %d", weekday, day, month, year)
		},
	},
}

func (l Locale) valid() bool {
	_, ok := calendars[l]
	return ok
}

// ParseLocale falls back to en-US for unknown tags.
func ParseLocale(tag string) Locale {
	if l := Locale(tag); l.valid() {
		return l
	}
	return LocaleEnUS
}

func (l Locale) names() calendarNames {
	if c, ok := calendars[l]; ok {
		return c
	}
	return calendars[LocaleEnUS]
}

// FormattedDate is the display form of a calendar day.
type FormattedDate struct {
	Weekday string `json:"weekday"`
	Day     int    `json:"day"`
	Month   string `json:"month"`
	Year    int    `json:"year"`
	Text    string `json:"text"`
}

func (l Locale) formatDate(t time.Time) FormattedDate {
	names := l.names()
	weekday := names.weekdays[t.Weekday()]
	month := names.months[t.Month()-1]
	return FormattedDate{
		Weekday: weekday,
		Day:     t.Day(),
		Month:   month,
		Year:    t.Year(),
		Text:    names.format(weekday, t.Day(), month, t.Year()),
	}
}
