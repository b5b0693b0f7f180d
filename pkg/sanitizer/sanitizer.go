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
	reBlankLines   = regexp.MustCompile(`\n{3,}`)
	reTrailingSpan = regexp.MustCompile(`[ \t]+\n`)
)

// SanitizePurpose flattens the purpose onto a single line.
func SanitizePurpose(input string) string {
	p := Pipeline{
		StripControl,
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// SanitizeSpecialRequests keeps line breaks but drops trailing blanks and collapses
// runs of empty lines.
func SanitizeSpecialRequests(input string) string {
	p := Pipeline{
		func(s string) string { return strings.ReplaceAll(s, "\r\n", "\n") },
		StripControl,
		func(s string) string { return reTrailingSpan.ReplaceAllString(s, "\n") },
		func(s string) string { return reBlankLines.ReplaceAllString(s, "\n\n") },
		strings.TrimSpace,
	}
	return p.Apply(input)
}
