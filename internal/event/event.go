// Package event holds the fixed details of the advertised concert.
package event

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/Shivanand-hulikatti/concert-registration/internal/model"
)

// Abidjan is the Africa/Abidjan location (UTC, no DST).
var Abidjan *time.Location

func init() {
	var err error
	Abidjan, err = time.LoadLocation("Africa/Abidjan")
	if err != nil {
		panic("event: load Africa/Abidjan: " + err.Error())
	}
}

// Concert returns the concert advertised by the site.
func Concert() model.Concert {
	return model.Concert{
		Title:   "La légende urbaine",
		Artist:  "ENFANT NOIR SD",
		City:    "Abidjan",
		Venue:   "Palais de la Culture, Abidjan",
		StartAt: time.Date(2025, time.September, 19, 20, 0, 0, 0, Abidjan),
		Contact: "0704349625",
	}
}

var frenchMonths = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// LongDate formats t as "19 Septembre 2025" in Abidjan time.
func LongDate(t time.Time) string {
	t = t.In(Abidjan)
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// ShortDate formats t as "19/09/2025" in Abidjan time.
func ShortDate(t time.Time) string {
	return t.In(Abidjan).Format("02/01/2006")
}

// ClockTime formats t as "20:00" in Abidjan time.
func ClockTime(t time.Time) string {
	return t.In(Abidjan).Format("15:04")
}
