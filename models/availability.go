package models

import (
	"fmt"
	"time"

	"github.com/meinhoongagan/booking-platform/utils"
)

const SlotLayout = "15:04"

var weekdayKeys = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// Availability maps a weekday key (mon..sun) to the start labels offered
// that day, in the order the provider listed them.
type Availability map[string][]string

// WeekdayKey returns the availability key for t's weekday.
func WeekdayKey(t time.Time) string {
	return weekdayKeys[t.Weekday()]
}

func isWeekdayKey(k string) bool {
	for _, w := range weekdayKeys {
		if w == k {
			return true
		}
	}
	return false
}

func (a Availability) Validate() error {
	for day, labels := range a {
		if !isWeekdayKey(day) {
			return fmt.Errorf("%w: unknown availability day %q", utils.ErrValidation, day)
		}
		seen := make(map[string]struct{}, len(labels))
		for _, label := range labels {
			if _, err := time.Parse(SlotLayout, label); err != nil {
				return fmt.Errorf("%w: invalid time label %q on %s", utils.ErrValidation, label, day)
			}
			if _, dup := seen[label]; dup {
				return fmt.Errorf("%w: duplicate time label %q on %s", utils.ErrValidation, label, day)
			}
			seen[label] = struct{}{}
		}
	}
	return nil
}

// SlotTime anchors a HH:MM label on the calendar day of date, in date's location.
func SlotTime(date time.Time, label string) (time.Time, error) {
	hm, err := time.Parse(SlotLayout, label)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid time label %q", utils.ErrValidation, label)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, hm.Hour(), hm.Minute(), 0, 0, date.Location()), nil
}

// Slot is one bookable start time on a given day.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}
