package weather

import (
	"strings"
	"unicode"
)

// countryCodes maps recognized trailing country tokens to ISO codes.
var countryCodes = map[string]string{
	"USA":            "US",
	"UNITED STATES":  "US",
	"US":             "US",
	"UK":             "GB",
	"UNITED KINGDOM": "GB",
	"CANADA":         "CA",
}

// ExtractCityQuery reduces a free-text postal address to a coarse city
// query the forecast provider can resolve, e.g.
//
//	"Times Square, New York, NY 10036, USA" -> "New York,US"
//	"Queens Museum, Queens, NY, USA"        -> "Queens,US"
//
// Heuristic: tokenize on commas, fold a trailing recognized country
// token into a country code, skip tokens that look like a postal code
// or short state abbreviation, skip the leading venue token when the
// address has more than two tokens, and take the nearest remaining
// token as the city. Falls back to the last token.
func ExtractCityQuery(place string) string {
	if place == "" {
		return ""
	}

	var tokens []string
	for _, t := range strings.Split(place, ",") {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	if len(tokens) == 0 {
		return strings.TrimSpace(place)
	}

	countryCode := ""
	for i := len(tokens) - 1; i >= 0; i-- {
		if cc, ok := countryCodes[strings.ToUpper(tokens[i])]; ok {
			countryCode = cc
			break
		}
	}

	city := ""
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		if _, ok := countryCodes[strings.ToUpper(tok)]; ok {
			continue
		}
		if looksLikeStateOrZip(tok) {
			continue
		}
		// Skip the venue line when there is one.
		if i == 0 && len(tokens) > 2 {
			continue
		}
		city = tok
		break
	}

	if city == "" {
		city = tokens[len(tokens)-1]
	}

	if countryCode != "" {
		return city + "," + countryCode
	}
	return city
}

// looksLikeStateOrZip reports whether a token is a postal code or a
// short state abbreviation like "NY".
func looksLikeStateOrZip(tok string) bool {
	for _, r := range tok {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return len(tok) <= 3 && tok == strings.ToUpper(tok)
}
