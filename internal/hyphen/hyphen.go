// Package hyphen resolves soft line-break hyphenation in OCR'd text lines.
//
// The recognized hyphen glyphs follow the OCR-D transcription guidelines for
// Silbentrennung (https://ocr-d.de/en/gt-guidelines/trans/trSilbentrennung.html).
// The continuation rule is tuned for German typesetting: a line-final hyphen
// followed by an uppercase letter marks a genuine compound boundary
// ("Berlin-Wilmersdorf"), while a lowercase continuation means the hyphen was
// inserted by the line break and is removed ("Ma-" + "schine" = "Maschine").
// This is a heuristic, not a dictionary-backed dehyphenator.
package hyphen

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// hyphens are the line-final glyphs treated as soft hyphenation marks:
// ASCII hyphen-minus, non-breaking hyphen, double hyphen and
// double oblique hyphen.
const hyphens = "-‑⹀⸗"

func endsWithHyphen(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && strings.ContainsRune(hyphens, r)
}

// trimHyphen removes the final hyphen glyph from s.
func trimHyphen(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

// Join concatenates OCR lines into a single string, resolving soft hyphens.
// Lines without a trailing hyphen are joined with a single space. Empty lines
// are skipped.
func Join(lines []string) string {
	var text string
	for _, next := range lines {
		if next == "" {
			continue
		}
		if text == "" {
			text = next
			continue
		}
		if endsWithHyphen(text) {
			first, _ := utf8.DecodeRuneInString(next)
			if unicode.IsUpper(first) {
				text += next
			} else {
				text = trimHyphen(text) + next
			}
		} else {
			text += " " + next
		}
	}
	return text
}

// Merge resolves soft hyphens while keeping the line structure: consecutive
// hyphen-terminated entries are merged into their successor, all other lines
// stay separate entries. It is used ahead of entity extraction, where line
// boundaries still carry meaning. A continuation containing a colon is never
// merged: it is almost certainly an attribute line that happens to follow a
// hyphenated name, and gluing it on would hide the attribute delimiter.
func Merge(lines []string) []string {
	var out []string
	for _, next := range lines {
		if next == "" {
			continue
		}
		if len(out) == 0 {
			out = append(out, next)
			continue
		}
		last := out[len(out)-1]
		if endsWithHyphen(last) && !strings.Contains(next, ":") {
			first, _ := utf8.DecodeRuneInString(next)
			switch {
			case unicode.IsUpper(first):
				out[len(out)-1] = last + next
				continue
			case unicode.IsLower(first):
				out[len(out)-1] = trimHyphen(last) + next
				continue
			}
		}
		out = append(out, next)
	}
	return out
}
