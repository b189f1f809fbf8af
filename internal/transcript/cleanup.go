package transcript

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// fillerAlternatives are removed only when they appear as standalone
// words or phrases. The list is deliberately short; aggressive filler
// stripping mangles sentences where the words carry meaning.
const fillerAlternatives = `um+|uh+|er+|ah+|like|you know|kind of|sort of|I mean`

var (
	whitespaceRE  = regexp.MustCompile(`\s+`)
	fillerRE      = regexp.MustCompile(`(?i)(^|[ ,;:])\b(?:` + fillerAlternatives + `)\b([ ,;:]|$)`)
	spaceBeforeRE = regexp.MustCompile(`\s+([,.;:!?])`)
	spaceAfterRE  = regexp.MustCompile(`([,.;:!?])([A-Za-z])`)
)

// Cleanup applies the conservative transcript cleanup: whitespace
// normalization, standalone filler removal, de-stuttering of immediately
// repeated words, punctuation spacing fixes, and a terminal period on
// blocks long enough to read as sentences.
func Cleanup(text string) string {
	t := strings.TrimSpace(text)
	t = whitespaceRE.ReplaceAllString(t, " ")

	t = fillerRE.ReplaceAllString(t, "${1}${2}")
	t = strings.TrimSpace(whitespaceRE.ReplaceAllString(t, " "))

	t = deStutter(t)

	t = spaceBeforeRE.ReplaceAllString(t, "${1}")
	t = spaceAfterRE.ReplaceAllString(t, "${1} ${2}")
	t = collapsePunctuation(t)

	if t != "" && !strings.ContainsAny(string(t[len(t)-1]), ".!?") {
		if utf8.RuneCountInString(t) > 40 {
			t += "."
		}
	}
	return t
}

// deStutter collapses runs of the same word separated by plain spaces,
// keeping the last occurrence so trailing punctuation survives ("the
// the." becomes "the."). Words split by punctuation ("We, we") are left
// alone.
func deStutter(t string) string {
	words := strings.Split(t, " ")
	out := words[:0]
	for _, w := range words {
		if n := len(out); n > 0 && repeatsWord(out[n-1], w) {
			out[n-1] = w
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// repeatsWord reports whether cur starts with prev as a whole word, where
// prev itself is a bare word. "the" / "the." repeats; "the" / "theory"
// does not.
func repeatsWord(prev, cur string) bool {
	if prev == "" || !isBareWord(prev) {
		return false
	}
	if len(cur) < len(prev) || !strings.EqualFold(cur[:len(prev)], prev) {
		return false
	}
	if len(cur) == len(prev) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(cur[len(prev):])
	return !isWordRune(next)
}

func isBareWord(s string) bool {
	for _, r := range s {
		if !isWordRune(r) {
			return false
		}
	}
	return s != ""
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// collapsePunctuation squashes accidental doubled punctuation marks
// (".." or ",,") down to one.
func collapsePunctuation(t string) string {
	var b strings.Builder
	b.Grow(len(t))
	var prev rune
	for _, r := range t {
		if r == prev && strings.ContainsRune(",.;:!?", r) {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
