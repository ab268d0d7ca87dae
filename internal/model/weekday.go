package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DayOfWeek mirrors time.Weekday (Sunday = 0) but marshals as the uppercase
// day name ("MONDAY"), which is also how schedules store it.
type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

func DayOfWeekOf(w time.Weekday) DayOfWeek {
	return DayOfWeek(w)
}

func ParseDayOfWeek(s string) (DayOfWeek, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUNDAY":
		return Sunday, nil
	case "MONDAY":
		return Monday, nil
	case "TUESDAY":
		return Tuesday, nil
	case "WEDNESDAY":
		return Wednesday, nil
	case "THURSDAY":
		return Thursday, nil
	case "FRIDAY":
		return Friday, nil
	case "SATURDAY":
		return Saturday, nil
	}
	return 0, fmt.Errorf("invalid day of week %q", s)
}

func (d DayOfWeek) String() string {
	return strings.ToUpper(time.Weekday(d).String())
}

func (d DayOfWeek) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DayOfWeek) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDayOfWeek(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
