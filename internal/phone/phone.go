// Package phone normalizes phone numbers pulled from extraction text to
// E.164 using libphonenumber metadata.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers written without a country prefix.
const DefaultRegion = "US"

// fallbackRegions are tried in order when a number cannot be parsed
// against the requested region.
var fallbackRegions = []string{"US", "GB", "CA", "AU", "DE", "FR", "IT", "ES", "NL", "BE"}

// Info describes a normalized number.
type Info struct {
	Raw         string `json:"raw"`
	E164        string `json:"e164,omitempty"`
	Region      string `json:"region,omitempty"`
	CountryCode int    `json:"country_code,omitempty"`
	Valid       bool   `json:"valid"`
}

// Normalize returns raw in E.164 form. ok is false when the number cannot
// be parsed or is not a valid number for any tried region.
func Normalize(raw, region string) (string, bool) {
	num, ok := parse(raw, region)
	if !ok {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

// Describe normalizes raw and reports its region.
func Describe(raw, region string) Info {
	info := Info{Raw: raw}
	num, ok := parse(raw, region)
	if !ok {
		return info
	}
	info.Valid = true
	info.E164 = phonenumbers.Format(num, phonenumbers.E164)
	info.Region = phonenumbers.GetRegionCodeForNumber(num)
	info.CountryCode = int(num.GetCountryCode())
	return info
}

// NormalizeAll maps each input to its E.164 form. Numbers that fail to
// normalize map to the empty string.
func NormalizeAll(raws []string, region string) map[string]string {
	out := make(map[string]string, len(raws))
	for _, raw := range raws {
		e164, _ := Normalize(raw, region)
		out[raw] = e164
	}
	return out
}

func parse(raw, region string) (*phonenumbers.PhoneNumber, bool) {
	cleaned := clean(raw)
	if cleaned == "" {
		return nil, false
	}
	region = strings.ToUpper(strings.TrimSpace(region))

	num, err := phonenumbers.Parse(cleaned, region)
	if err == nil {
		return num, phonenumbers.IsValidNumber(num)
	}
	for _, candidate := range fallbackRegions {
		if candidate == region {
			continue
		}
		num, err := phonenumbers.Parse(cleaned, candidate)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(num) {
			return num, true
		}
	}
	return nil, false
}

// clean keeps digits and plus signs.
func clean(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
