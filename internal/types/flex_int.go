package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt is an int that can be unmarshaled from a JSON number, a numeric
// JSON string, null, or the empty string. The incident forms submit
// duree_arret as whichever of those the browser produced; anything
// unparseable collapses to zero, matching how the service has always stored
// absent downtime.
type FlexInt int

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}

	// Try unmarshaling as a number first
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt(n)
		return nil
	}

	// Try unmarshaling as a string
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		val, err := strconv.Atoi(s)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(val)
		return nil
	}

	*f = 0
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// Int converts FlexInt back to int.
func (f FlexInt) Int() int {
	return int(f)
}
