package webstract

import (
	"errors"
	"strings"
)

// ErrInvalidORCID indicates a string that is not an ORCID URL or ISNI.
var ErrInvalidORCID = errors.New("invalid ORCID")

// ParseORCID validates an ORCID given as an orcid.org URL or a dashed ISNI
// and returns the canonical https://orcid.org/ URL form.
func ParseORCID(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "http://orcid.org/")
	s = strings.TrimPrefix(s, "https://orcid.org/")
	isni := strings.ReplaceAll(s, "-", "")
	if len(isni) != 16 {
		return "", ErrInvalidORCID
	}
	for i, r := range isni {
		if r >= '0' && r <= '9' {
			continue
		}
		// checksum position may be X
		if i == 15 && r == 'X' {
			continue
		}
		return "", ErrInvalidORCID
	}
	return "https://orcid.org/" + isni[0:4] + "-" + isni[4:8] + "-" + isni[8:12] + "-" + isni[12:16], nil
}
