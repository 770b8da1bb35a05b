package domain

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	fallbackPrefix    = "evt"
	minEventIDLength  = 10
	minUsableIDChars  = 5
	fragmentLength    = 6
	longFragmentLen   = 12
	minimalRandomSpan = 1_000_000
)

var now = time.Now

// GenerateEventID returns prefix_<unix-ms>_<random base-36>. The result is
// never empty, contains no whitespace, is at least 10 characters long and
// has at least 5 characters from [A-Za-z0-9_].
func GenerateEventID(prefix string) string {
	p := stripWhitespace(strings.TrimSpace(prefix))
	if p == "" {
		p = fallbackPrefix
	}
	ts := strconv.FormatInt(now().UnixMilli(), 10)

	id := stripWhitespace(p + "_" + ts + "_" +
		fragment(fragmentLength) + fragment(fragmentLength) + fragment(fragmentLength))

	if len(id) < minEventIDLength {
		id = stripWhitespace(p + "_" + ts + "_" + fragment(longFragmentLen) + fragment(longFragmentLen))
	}

	if usableIDChars(id) < minUsableIDChars {
		id = fallbackPrefix + "_" + ts + "_" + strconv.Itoa(rand.IntN(minimalRandomSpan))
	}
	return id
}

func fragment(n int) string {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(strconv.FormatUint(rand.Uint64(), 36))
	}
	return b.String()[:n]
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func usableIDChars(s string) int {
	n := 0
	for _, r := range s {
		if r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			n++
		}
	}
	return n
}
