package cards

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	galleryPattern = regexp.MustCompile(`^(TG|GG)(\d+)(?:/(?:TG|GG)\d+)?$`)
	digitsPattern  = regexp.MustCompile(`\d+`)
)

// FormatSetNumber normalises a raw card number into the catalog's
// XXX/YYY form. Gallery numbers (TG.., GG..) are zero-padded to two digits
// on both sides of the slash; regular numbers keep any prefix or suffix and
// are zero-padded to three digits for modern sets only. The empty string is
// returned when no number can be derived.
func FormatSetNumber(raw string, printedTotal int, modern bool) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if m := galleryPattern.FindStringSubmatch(raw); m != nil {
		prefix := m[1]
		number, _ := strconv.Atoi(m[2])
		// Gallery cards always use two-digit padding.
		return fmt.Sprintf("%s%02d/%s%d", prefix, number, prefix, printedTotal)
	}

	original := strings.SplitN(raw, "/", 2)[0]

	loc := digitsPattern.FindStringIndex(original)
	if loc == nil {
		return ""
	}

	prefix := original[:loc[0]]
	number, _ := strconv.Atoi(original[loc[0]:loc[1]])
	suffix := original[loc[1]:]

	var formatted string
	if modern {
		// Modern sets use fixed three-digit numbering.
		formatted = fmt.Sprintf("%03d", number)
	} else {
		// Legacy sets keep the number unpadded.
		formatted = strconv.Itoa(number)
	}

	return fmt.Sprintf("%s%s%s/%d", prefix, formatted, suffix, printedTotal)
}
