package components

// Cause identifies why an individual died.
type Cause uint8

const (
	CauseAge Cause = iota
	CauseExposure
	CauseThirst
	CauseStarvation
)

// Causes lists every cause in rule evaluation order.
var Causes = []Cause{CauseAge, CauseExposure, CauseThirst, CauseStarvation}

var causeNames = [...]string{
	CauseAge:        "age",
	CauseExposure:   "exposure",
	CauseThirst:     "thirst",
	CauseStarvation: "starvation",
}

func (c Cause) String() string {
	if int(c) < len(causeNames) {
		return causeNames[c]
	}
	return "unknown"
}

// MarshalText encodes the cause by name so it can key JSON and YAML maps.
func (c Cause) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
