package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/aeworks/ops-api/internal/domain"
)

// ProjectCodePrefix starts every generated project code.
const ProjectCodePrefix = "AEP"

var projectCodePattern = regexp.MustCompile(`^AEP-([A-Z0-9]+)-(\d+)\.(\d{2})`)

// NumberSequence generates project codes.
//
// Format: AEP-{INITIALS}-{SEQUENCE}.{YY}
// Example: AEP-JD-001.24, AEP-MBC-014.25
//
// The sequence is per initials and year: the next code is one past the
// highest sequence already used by a stored project.
type NumberSequence struct{}

// Initials returns up to three upper-case initials of name's words, "XX"
// when name has no letters or digits.
func (NumberSequence) Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		r := []rune(word)[0]
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if b.Len() == 3 {
			break
		}
	}
	if b.Len() == 0 {
		return "XX"
	}
	return b.String()
}

// Next returns the next code for name in now's year given existing codes.
func (n NumberSequence) Next(name string, now time.Time, existing []string) string {
	initials := n.Initials(name)
	year := fmt.Sprintf("%02d", now.Year()%100)

	maxSeq := 0
	for _, code := range existing {
		m := projectCodePattern.FindStringSubmatch(domain.NormalizeCode(code))
		if m == nil || m[1] != initials || m[3] != year {
			continue
		}
		if seq, err := strconv.Atoi(m[2]); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}

	// Format: AEP-II-NNN.YY (zero-padded to 3 digits)
	return fmt.Sprintf("%s-%s-%03d.%s", ProjectCodePrefix, initials, maxSeq+1, year)
}
