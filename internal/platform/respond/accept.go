package respond

import (
	"strconv"
	"strings"
)

type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. A q value that is
// missing, malformed or outside [0, 1] counts as 1; the last q parameter wins.
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		params := strings.Split(part, ";")
		mt := strings.ToLower(strings.TrimSpace(params[0]))
		typ, sub, ok := strings.Cut(mt, "/")
		if !ok {
			sub = "*"
		}
		mr := mediaRange{typ: typ, subtype: sub, q: 1.0}
		for _, p := range params[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.ToLower(strings.TrimSpace(k)) != "q" {
				continue
			}
			q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || q < 0 || q > 1 {
				q = 1.0
			}
			mr.q = q
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// specificity reports how precisely r names the given structured suffix
// (json or cbor), or -1 when it does not match at all.
func (r mediaRange) specificity(suffix string) int {
	switch {
	case r.typ == "application" && (r.subtype == suffix || r.subtype == "problem+"+suffix):
		return 3
	case r.typ == "application" && r.subtype == "*+"+suffix:
		return 2
	case r.typ == "application" && r.subtype == "*":
		return 1
	case r.typ == "*" && r.subtype == "*":
		return 0
	default:
		return -1
	}
}

// quality returns the q value of the most specific range matching suffix.
func quality(ranges []mediaRange, suffix string) float64 {
	best, q := -1, 0.0
	for _, r := range ranges {
		if s := r.specificity(suffix); s > best {
			best, q = s, r.q
		}
	}
	return q
}

// selectFormat reports whether CBOR should be used. JSON wins ties, an empty
// header and any header that excludes both formats.
func selectFormat(accept string) bool {
	ranges := parseAccept(accept)
	if len(ranges) == 0 {
		return false
	}
	cborQ := quality(ranges, "cbor")
	return cborQ > 0 && cborQ > quality(ranges, "json")
}
