package agent

import (
	"strconv"
	"strings"
	"time"
)

// formatINR renders an amount with Indian digit grouping: the last three
// digits form one group, every two digits after that another
// (1234567.5 -> "12,34,567.50").
func formatINR(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	// Round to paise before splitting so a fractional carry reaches the
	// rupee part (45230.999 -> "45,231", not "45,230").
	fixed := strconv.FormatFloat(amount, 'f', 2, 64)
	digits, cents, _ := strings.Cut(fixed, ".")

	var groups []string
	if len(digits) > 3 {
		head := digits[:len(digits)-3]
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		groups = append(groups, digits[len(digits)-3:])
	} else {
		groups = []string{digits}
	}

	out := strings.Join(groups, ",")
	if cents != "00" {
		out += "." + cents
	}
	if neg {
		out = "-" + out
	}
	return out
}

// formatTimestamp renders a time for chat replies.
func formatTimestamp(t time.Time) string {
	return t.Format("02 Jan 2006, 3:04 PM")
}

// formatDate renders a date for chat replies.
func formatDate(t time.Time) string {
	return t.Format("02 Jan 2006")
}
