package components

// Season of the calendar year.
type Season uint8

const (
	Winter Season = iota
	Spring
	Summer
	Fall
)

var seasonNames = [...]string{
	Winter: "winter",
	Spring: "spring",
	Summer: "summer",
	Fall:   "fall",
}

func (s Season) String() string {
	if int(s) < len(seasonNames) {
		return seasonNames[s]
	}
	return "unknown"
}

// seasonMonths maps each season to its calendar months.
var seasonMonths = [...][3]int{
	Winter: {12, 1, 2},
	Spring: {3, 4, 5},
	Summer: {6, 7, 8},
	Fall:   {9, 10, 11},
}

// SeasonOf returns the season containing a calendar month (1-12).
// Months outside the calendar fall back to winter.
func SeasonOf(month int) Season {
	for s, months := range seasonMonths {
		for _, m := range months {
			if m == month {
				return Season(s)
			}
		}
	}
	return Winter
}
