package chart

import (
	"strings"
	"unicode"
)

// FileName turns an exercise name into a PNG file name: lower case, runs of
// anything but letters and digits collapsed to one underscore.
func FileName(exercise string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(exercise) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	if b.Len() == 0 {
		return "exercise.png"
	}
	return b.String() + ".png"
}
