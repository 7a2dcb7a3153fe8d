package util

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reSpaces   = regexp.MustCompile(`\s+`)
	reFourDigs = regexp.MustCompile(`\d{4}`)
)

// CollapseWhitespace trims s and joins its whitespace-separated tokens with sep.
func CollapseWhitespace(s, sep string) string {
	return reSpaces.ReplaceAllString(strings.TrimSpace(s), sep)
}

// NormalizeCountyName title-cases every whitespace-separated token so that
// "HARRIS", "harris" and "Harris" produce the same key.
func NormalizeCountyName(name string) string {
	fields := strings.Fields(name)
	for i, f := range fields {
		fields[i] = titleToken(f)
	}
	return strings.Join(fields, " ")
}

func titleToken(token string) string {
	r, size := utf8.DecodeRuneInString(token)
	if r == utf8.RuneError {
		return strings.ToLower(token)
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(token[size:])
}

// NormalizeOfficeTitle is the lookup form of an office title: upper case,
// single spaces.
func NormalizeOfficeTitle(title string) string {
	return strings.ToUpper(CollapseWhitespace(title, " "))
}

// ExtractYear returns the first run of four digits in s, or "" if none.
func ExtractYear(s string) string {
	return reFourDigs.FindString(s)
}

func LooksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
