package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekday identifies a day of the teaching week.
type Weekday string

const (
	WeekdayMonday    Weekday = "MONDAY"
	WeekdayTuesday   Weekday = "TUESDAY"
	WeekdayWednesday Weekday = "WEDNESDAY"
	WeekdayThursday  Weekday = "THURSDAY"
	WeekdayFriday    Weekday = "FRIDAY"
	WeekdaySaturday  Weekday = "SATURDAY"
)

// AllWeekdays is the full vocabulary accepted on assignments and
// availability windows. Saturday is valid data but excluded from automatic
// generation (see GenerationWeekdays).
var AllWeekdays = []Weekday{
	WeekdayMonday,
	WeekdayTuesday,
	WeekdayWednesday,
	WeekdayThursday,
	WeekdayFriday,
	WeekdaySaturday,
}

// GenerationWeekdays is the default day set searched by the generator.
var GenerationWeekdays = []Weekday{
	WeekdayMonday,
	WeekdayTuesday,
	WeekdayWednesday,
	WeekdayThursday,
	WeekdayFriday,
}

// ParseWeekday validates a raw day name.
func ParseWeekday(raw string) (Weekday, error) {
	day := Weekday(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range AllWeekdays {
		if day == known {
			return day, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", raw)
}

// TimeBlock is a fixed teaching interval, encoded as "HH:MM-HH:MM".
type TimeBlock string

const (
	Block0800 TimeBlock = "08:00-10:00"
	Block1000 TimeBlock = "10:00-12:00"
	Block1200 TimeBlock = "12:00-14:00"
	Block1400 TimeBlock = "14:00-16:00"
	Block1600 TimeBlock = "16:00-18:00"
	Block1800 TimeBlock = "18:00-20:00"
)

// AllTimeBlocks is the canonical six-block day used by assignments.
var AllTimeBlocks = []TimeBlock{
	Block0800,
	Block1000,
	Block1200,
	Block1400,
	Block1600,
	Block1800,
}

// GenerationTimeBlocks is the four-block subset the generator draws from.
// The narrower vocabulary is inherited behaviour, kept on purpose.
var GenerationTimeBlocks = []TimeBlock{
	Block0800,
	Block1000,
	Block1400,
	Block1600,
}

// ParseTimeBlock validates a raw block value against the canonical set.
func ParseTimeBlock(raw string) (TimeBlock, error) {
	block := TimeBlock(strings.TrimSpace(raw))
	for _, known := range AllTimeBlocks {
		if block == known {
			return block, nil
		}
	}
	return "", fmt.Errorf("unknown time block %q", raw)
}

// Bounds splits the block into its start and end clock times.
func (b TimeBlock) Bounds() (start, end string, err error) {
	parts := strings.SplitN(string(b), "-", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed time block %q", b)
	}
	start = strings.TrimSpace(parts[0])
	end = strings.TrimSpace(parts[1])
	if _, err := time.Parse("15:04", start); err != nil {
		return "", "", fmt.Errorf("malformed block start %q: %w", start, err)
	}
	if _, err := time.Parse("15:04", end); err != nil {
		return "", "", fmt.Errorf("malformed block end %q: %w", end, err)
	}
	return start, end, nil
}
