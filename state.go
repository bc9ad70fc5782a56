package chkconfig

import (
	"fmt"
	"strings"

	"github.com/influxdata/chkconfig/kit/errors"
)

const (
	onKeyword  = "on"
	offKeyword = "off"
)

// ParseState interprets the leading keyword of a flag state string.
//
// Matching is a case-insensitive prefix test: "on", "ON\n", and even
// "ONNO" all read as true, while anything starting with "off" reads as
// false. The prefix semantic is a compatibility quirk of the historical
// file format and is preserved here deliberately.
func ParseState(s string) (bool, error) {
	switch {
	case len(s) >= len(onKeyword) && strings.EqualFold(s[:len(onKeyword)], onKeyword):
		return true, nil
	case len(s) >= len(offKeyword) && strings.EqualFold(s[:len(offKeyword)], offKeyword):
		return false, nil
	}
	return false, &errors.Error{
		Code: errors.EInvalid,
		Msg:  fmt.Sprintf("unrecognized state %q", s),
	}
}

// FormatState returns the canonical keyword for state, "on" or "off".
func FormatState(state bool) string {
	if state {
		return onKeyword
	}
	return offKeyword
}
