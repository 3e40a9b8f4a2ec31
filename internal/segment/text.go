// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// leadingEnum matches heading enumerations such as "1.", "2.3", "IV.", "B)".
var leadingEnum = regexp.MustCompile(`^(?:\d+(?:\.\d+)*[.)]?|[ivxlc]+[.)]|[a-z][.)])\s+`)

// NormalizeHeading maps heading text to its comparison form: NFKC,
// case-folded, whitespace collapsed, leading enumeration and trailing
// colon removed.
func NormalizeHeading(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	s = collapseSpace(s)
	s = leadingEnum.ReplaceAllString(s, "")
	s = strings.TrimRight(s, " :.")
	return strings.TrimSpace(s)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// hasWordPrefix reports whether s starts with p and p ends at a word boundary in s.
func hasWordPrefix(s, p string) bool {
	if !strings.HasPrefix(s, p) {
		return false
	}
	if len(s) == len(p) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[len(p):])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// indexFold returns the byte offset in s of the first case-insensitive
// occurrence of substr, treating any whitespace run as a single space.
// It returns -1 when there is none.
func indexFold(s, substr string) int {
	if substr == "" {
		return -1
	}
	for i := range s {
		if foldPrefix(s[i:], substr) {
			return i
		}
	}
	return -1
}

func foldPrefix(s, prefix string) bool {
	for prefix != "" {
		pr, psize := utf8.DecodeRuneInString(prefix)
		prefix = prefix[psize:]
		if s == "" {
			return false
		}
		sr, ssize := utf8.DecodeRuneInString(s)

		if unicode.IsSpace(pr) {
			if !unicode.IsSpace(sr) {
				return false
			}
			s = strings.TrimLeftFunc(s, unicode.IsSpace)
			prefix = strings.TrimLeftFunc(prefix, unicode.IsSpace)
			continue
		}
		if sr != pr && unicode.ToLower(sr) != unicode.ToLower(pr) {
			return false
		}
		s = s[ssize:]
	}
	return true
}
