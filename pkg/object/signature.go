package object

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signature is the parsed form of an author or committer line:
// "Name <email> unix-seconds +hhmm".
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// ParseSignature splits an identity line. Commits carry these lines as free
// text, so ok is false rather than an error when the shape is not recognized.
func ParseSignature(s string) (sig Signature, ok bool) {
	lt := strings.IndexByte(s, '<')
	gt := strings.LastIndexByte(s, '>')
	if lt < 0 || gt < lt {
		return Signature{}, false
	}
	sig.Name = strings.TrimSpace(s[:lt])
	sig.Email = s[lt+1 : gt]

	fields := strings.Fields(s[gt+1:])
	if len(fields) != 2 {
		return Signature{}, false
	}
	secs, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, false
	}
	loc, err := parseTZOffset(fields[1])
	if err != nil {
		return Signature{}, false
	}
	sig.When = time.Unix(secs, 0).In(loc)
	return sig, true
}

// String renders the signature in commit-header form.
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When.Unix(), s.When.Format("-0700"))
}

func parseTZOffset(tz string) (*time.Location, error) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return nil, fmt.Errorf("bad timezone %q", tz)
	}
	hh, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil, err
	}
	mm, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil, err
	}
	offset := hh*3600 + mm*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset), nil
}
