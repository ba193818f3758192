package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reNonLettersDigits = regexp.MustCompile(`[^0-9\p{L}]+`)
)

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func SanitizeText(input string) string {
	return TrimAndNormalize(input)
}

func SanitizeEmail(input string) string {
	return trimAndLower(input)
}

func SanitizeID(input string) string {
	return strings.TrimSpace(input)
}

func SanitizeFeature(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reNonLettersDigits.ReplaceAllString(s, "-") },
		func(s string) string { return strings.Trim(s, "-") },
	}
	return p.Apply(input)
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
