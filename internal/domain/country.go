package domain

import "sort"

// CountrySummary aggregates the catalog view for one covered location:
// how many plans cover it and the cheapest retail entry point.
type CountrySummary struct {
	Code          string  `json:"id"`
	Name          string  `json:"name"`
	Flag          string  `json:"flag"`
	PlansCount    int     `json:"plans_count"`
	StartingPrice float64 `json:"starting_price"`
}

// BuildCountrySummaries groups plans by covered location code, counting plans
// and tracking the minimum retail price per country. Results are sorted by
// display name.
func BuildCountrySummaries(plans []*Plan) []CountrySummary {
	byCode := make(map[string]*CountrySummary)

	for _, p := range plans {
		for _, code := range p.Locations {
			if code == "" {
				continue
			}
			s, ok := byCode[code]
			if !ok {
				byCode[code] = &CountrySummary{
					Code:          code,
					Name:          CountryName(code),
					Flag:          FlagEmoji(code),
					PlansCount:    1,
					StartingPrice: p.RetailPrice,
				}
				continue
			}
			s.PlansCount++
			if p.RetailPrice < s.StartingPrice {
				s.StartingPrice = p.RetailPrice
			}
		}
	}

	out := make([]CountrySummary, 0, len(byCode))
	for _, s := range byCode {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// countryNames covers the locations the supplier currently sells; codes
// outside the map fall back to the raw alpha-2 code.
var countryNames = map[string]string{
	"AM": "Armenia",
	"CA": "Canada",
	"DO": "Dominican Republic",
	"JE": "Jersey",
	"KG": "Kyrgyzstan",
	"KH": "Cambodia",
	"KR": "South Korea",
	"KW": "Kuwait",
	"KZ": "Kazakhstan",
	"QA": "Qatar",
	"UZ": "Uzbekistan",
}

// CountryName resolves an ISO alpha-2 code to a display name.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}

// FlagEmoji converts an ISO alpha-2 country code into its regional-indicator
// flag emoji. Anything that is not a two-letter code gets the globe.
func FlagEmoji(code string) string {
	if len(code) != 2 {
		return "🌍"
	}
	const offset = 127397 // 'A' -> regional indicator A
	runes := make([]rune, 0, 2)
	for _, c := range code {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			return "🌍"
		}
		runes = append(runes, c+offset)
	}
	return string(runes)
}
