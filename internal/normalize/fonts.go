package normalize

import "strings"

// symbolFontMarkers are substrings of base font names that identify symbol
// and dingbat fonts. PDF base font names carry subset prefixes
// ("ABCDEF+Wingdings-Regular"), so matching is by substring, case folded.
var symbolFontMarkers = []string{
	"zapfdingbats",
	"dingbat",
	"wingdings",
	"webdings",
	"symbol",
	"marlett",
}

// isSymbolFont flags fragments drawn from a symbol/dingbat font. The font
// name is the primary signal; when the name is missing or opaque, text made
// up entirely of private-use code points is treated as symbolic too, since
// that is how Wingdings-style fonts surface through broken ToUnicode maps.
func isSymbolFont(fontName, text string) bool {
	name := strings.ToLower(fontName)
	for _, marker := range symbolFontMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}

	if text == "" {
		return false
	}
	for _, r := range text {
		if r < 0xE000 || r > 0xF8FF {
			return false
		}
	}
	return true
}
