package campus

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexString accepts a JSON string, number, or null and normalizes it to a
// string form. Request bodies arrive with numeric fields encoded either way.
type FlexString string

// UnmarshalJSON never fails: anything unusable decodes to the empty string.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = ""
			return nil
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		*f = ""
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// Int coerces the normalized value to an integer, absent when empty or
// unparseable. Float-shaped input truncates.
func (f FlexString) Int() *int {
	s := strings.TrimSpace(string(f))
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		n := int(fl)
		return &n
	}
	return nil
}

// seasonal semester labels and their canonical integers.
var semesterLabels = map[string]int{
	"spring": 1,
	"summer": 2,
	"fall":   3,
	"autumn": 3,
	"winter": 4,
}

// CoerceSemester normalizes semester input: numeric strings parse directly,
// recognized seasonal labels map to canonical integers, anything else is
// stored as absent rather than failing the operation.
func CoerceSemester(raw FlexString) *int {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if n, ok := semesterLabels[strings.ToLower(s)]; ok {
		return &n
	}
	return nil
}

// ParseRole canonicalizes case-insensitive role input against the closed
// role set. ok is false for anything outside Admin/Teacher/Student.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return RoleAdmin, true
	case "teacher":
		return RoleTeacher, true
	case "student":
		return RoleStudent, true
	}
	return "", false
}

// CanonicalStatus maps case-insensitive attendance status input onto the
// stored spelling, passing unrecognized values through unchanged.
func CanonicalStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "present":
		return StatusPresent
	case "absent":
		return StatusAbsent
	case "late":
		return StatusLate
	case "unknown":
		return StatusUnknown
	}
	return strings.TrimSpace(raw)
}
