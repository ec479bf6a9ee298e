// Package grading implements the answer-grading engine: tolerant
// normalizers for free-form student input, per-type scoring rules with
// partial credit, and the report assembler. Everything here is a pure
// function over immutable inputs and never fails on malformed input;
// garbled answers degrade to partial or zero structured values.
package grading

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	pairToken = regexp.MustCompile(`^([A-Za-z])\s*[-=:]?\s*(\d+)$`)
	pairScan  = regexp.MustCompile(`([A-Za-z])\s*[-=:]?\s*(\d+)`)
	tfSeps    = regexp.MustCompile(`[,.;]`)
	tfValue   = regexp.MustCompile(`[TF]`)
	anySpace  = regexp.MustCompile(`\s`)

	matchingSeps = strings.NewReplacer(";", " ", ",", " ", ":", " ")
)

// NormalizeChoice canonicalizes a single-choice answer for comparison.
func NormalizeChoice(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseMatching extracts letter-to-number pairs from inputs like
// "a-2 b-1 c-4", "a=2,b=1;c=4" or the concatenated "a2b1". Commas,
// semicolons and colons are flattened to spaces first, so they act as
// pair separators only: "a:2" splits into the tokens "a" and "2" and
// yields no pair. Within a token the letter and number may be joined
// by "-", "=" or nothing; tokens that do not match a whole
// letter-number pair are scanned for embedded pairs instead. A letter
// mentioned twice keeps its last value. Letters never mentioned are
// simply absent from the result.
func ParseMatching(s string) map[string]int {
	pairs := map[string]int{}
	if s == "" {
		return pairs
	}
	for _, tok := range strings.Fields(matchingSeps.Replace(s)) {
		if m := pairToken.FindStringSubmatch(tok); m != nil {
			n, _ := strconv.Atoi(m[2])
			pairs[strings.ToLower(m[1])] = n
			continue
		}
		for _, m := range pairScan.FindAllStringSubmatch(tok, -1) {
			n, _ := strconv.Atoi(m[2])
			pairs[strings.ToLower(m[1])] = n
		}
	}
	return pairs
}

// ParseTFList extracts an ordered T/F sequence from inputs like
// "T T F T", "t,t,f,t" or the compact "TTFT". With any whitespace
// present (after commas, periods and semicolons are flattened) the
// input is tokenized and only T/F/TRUE/FALSE tokens are kept; without
// whitespace every T or F character is taken in sequence and all other
// characters are ignored. The result may be shorter than the expected
// item count.
func ParseTFList(s string) []string {
	if s == "" {
		return nil
	}
	up := tfSeps.ReplaceAllString(strings.ToUpper(s), " ")
	if anySpace.MatchString(up) {
		var out []string
		for _, tok := range strings.Fields(up) {
			switch tok {
			case "T", "TRUE":
				out = append(out, "T")
			case "F", "FALSE":
				out = append(out, "F")
			}
		}
		return out
	}
	return tfValue.FindAllString(up, -1)
}

// ParseOrdering extracts an ordered letter sequence from inputs like
// "d,c,b,a,e", "d c b a e" or the compact "dcbae". Commas win over
// whitespace as the separator; with neither present each character is
// its own token. Tokens are lowercased and kept only when they are
// exactly one letter a-z.
func ParseOrdering(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var raw []string
	switch {
	case strings.Contains(s, ","):
		raw = strings.Split(s, ",")
	case anySpace.MatchString(s):
		raw = strings.Fields(s)
	default:
		for _, r := range s {
			raw = append(raw, string(r))
		}
	}
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if len(tok) == 1 && tok[0] >= 'a' && tok[0] <= 'z' {
			out = append(out, tok)
		}
	}
	return out
}
