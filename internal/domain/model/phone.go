package model

import "regexp"

// CountryCode is the dialing prefix offered in the verification panel.
type CountryCode string

const (
	CountryIndia CountryCode = "+91"
	CountryUSA   CountryCode = "+1"
	CountryUK    CountryCode = "+44"
)

// Region identifies the allow-list bucket a store can restrict phones to.
type Region string

const (
	RegionIndia  Region = "india"
	RegionUSA    Region = "usa"
	RegionUK     Region = "uk"
	RegionGlobal Region = "global"
)

// Local-number format per country. The prefix digit rules come from the
// national numbering plans (India mobiles start 6-9, US area codes 2-9,
// UK mobiles start 7).
var phonePatterns = map[CountryCode]*regexp.Regexp{
	CountryIndia: regexp.MustCompile(`^[6-9]\d{9}$`),
	CountryUSA:   regexp.MustCompile(`^[2-9]\d{9}$`),
	CountryUK:    regexp.MustCompile(`^7\d{9}$`),
}

var countryRegion = map[CountryCode]Region{
	CountryIndia: RegionIndia,
	CountryUSA:   RegionUSA,
	CountryUK:    RegionUK,
}

// PhoneCandidate is a country code plus the user-typed local number.
// It is never persisted beyond the current verification session.
type PhoneCandidate struct {
	CountryCode CountryCode
	LocalNumber string
}

// Valid reports whether the local number matches the format rule for the
// country code. Unknown country codes are simply invalid, never a panic.
func (p PhoneCandidate) Valid() bool {
	re, ok := phonePatterns[p.CountryCode]
	if !ok {
		return false
	}
	return re.MatchString(p.LocalNumber)
}

// E164 joins the country code and local number. Only meaningful when Valid.
func (p PhoneCandidate) E164() string {
	return string(p.CountryCode) + p.LocalNumber
}

// RegionOf maps a country code to its region, or "" for unknown codes.
func RegionOf(cc CountryCode) Region {
	return countryRegion[cc]
}

// AllowedIn reports whether the candidate's country is permitted by the
// configured region list. RegionGlobal admits every known country; a country
// outside the list is rejected rather than crashing on unexpected input.
func (p PhoneCandidate) AllowedIn(regions []Region) bool {
	region, ok := countryRegion[p.CountryCode]
	if !ok {
		return false
	}
	for _, r := range regions {
		if r == RegionGlobal || r == region {
			return true
		}
	}
	return false
}

// HelperText returns the per-country input hint shown next to the phone box.
func HelperText(cc CountryCode) string {
	switch cc {
	case CountryIndia:
		return "Enter 10-digit Indian mobile number (e.g., 7039940998)"
	case CountryUSA:
		return "Enter 10-digit US phone number (e.g., 2125551234)"
	case CountryUK:
		return "Enter UK phone number (e.g., 7700900123)"
	default:
		return "Select country and enter phone number"
	}
}
