package versions

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/blang/semver"
)

// Ranks of the special version forms. Unknown words sort below "dev".
const (
	rankUnknown = iota
	rankDev
	rankAlpha
	rankBeta
	rankRC
	rankNumber
	rankPatchLevel
)

// Compare orders two dot separated version strings. It returns -1, 0 or 1.
// Segments compare numerically, and pre-release tags sort below the release
// they precede: dev < alpha = a < beta = b < rc < release < pl = p.
func Compare(a string, b string) int {
	va, errA := semver.ParseTolerant(a)
	vb, errB := semver.ParseTolerant(b)
	if errA == nil && errB == nil {
		if c := compareCore(va, vb); c != 0 {
			return c
		}
		return comparePre(va.Pre, vb.Pre)
	}
	return compareSegments(canonicalize(a), canonicalize(b))
}

// Less reports whether a sorts before b.
func Less(a string, b string) bool {
	return Compare(a, b) < 0
}

func compareCore(a semver.Version, b semver.Version) int {
	if c := compareUint(a.Major, b.Major); c != 0 {
		return c
	}
	if c := compareUint(a.Minor, b.Minor); c != 0 {
		return c
	}
	return compareUint(a.Patch, b.Patch)
}

func comparePre(a []semver.PRVersion, b []semver.PRVersion) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return 1
	case len(b) == 0:
		return -1
	}

	for i := 0; i < len(a) || i < len(b); i++ {
		if i >= len(a) {
			return -1
		}
		if i >= len(b) {
			return 1
		}
		pa, pb := a[i], b[i]
		var c int
		switch {
		case pa.IsNum && pb.IsNum:
			c = compareUint(pa.VersionNum, pb.VersionNum)
		case pa.IsNum:
			c = compareInt(rankNumber, specialRank(pb.VersionStr))
		case pb.IsNum:
			c = compareInt(specialRank(pa.VersionStr), rankNumber)
		default:
			c = compareInt(specialRank(pa.VersionStr), specialRank(pb.VersionStr))
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// canonicalize splits a version on '.', '-', '_' and '+' and between runs of
// digits and non digits, so "1.0-dev" and "1.0dev" both become [1 0 dev].
func canonicalize(v string) []string {
	var parts []string
	var current strings.Builder
	lastDigit := false

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}

	for _, r := range strings.TrimPrefix(strings.TrimSpace(v), "v") {
		switch {
		case r == '.' || r == '-' || r == '_' || r == '+':
			flush()
			continue
		case current.Len() > 0 && unicode.IsDigit(r) != lastDigit:
			flush()
		}
		current.WriteRune(r)
		lastDigit = unicode.IsDigit(r)
	}
	flush()
	return parts
}

func compareSegments(a []string, b []string) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		switch {
		case i >= len(a):
			return -compareRemaining(b[i])
		case i >= len(b):
			return compareRemaining(a[i])
		}
		if c := comparePart(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// compareRemaining compares a trailing segment against a version that ran out
// of segments: "1.0.1" > "1.0" but "1.0-dev" < "1.0".
func compareRemaining(part string) int {
	if isNumeric(part) {
		return 1
	}
	return compareInt(specialRank(part), rankNumber)
}

func comparePart(a string, b string) int {
	aNum, bNum := isNumeric(a), isNumeric(b)
	switch {
	case aNum && bNum:
		na, _ := strconv.ParseUint(a, 10, 64)
		nb, _ := strconv.ParseUint(b, 10, 64)
		return compareUint(na, nb)
	case aNum:
		return compareInt(rankNumber, specialRank(b))
	case bNum:
		return compareInt(specialRank(a), rankNumber)
	default:
		return compareInt(specialRank(a), specialRank(b))
	}
}

func specialRank(s string) int {
	switch strings.ToLower(s) {
	case "dev":
		return rankDev
	case "alpha", "a":
		return rankAlpha
	case "beta", "b":
		return rankBeta
	case "rc":
		return rankRC
	case "pl", "p":
		return rankPatchLevel
	default:
		return rankUnknown
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func compareUint(a uint64, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt(a int, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
