package model

import "testing"

func TestPhoneCandidate_Valid(t *testing.T) {
	tests := []struct {
		name  string
		cc    CountryCode
		local string
		want  bool
	}{
		{"india mobile", CountryIndia, "7039940998", true},
		{"india lowest valid prefix", CountryIndia, "6000000000", true},
		{"india prefix below range", CountryIndia, "5999999999", false},
		{"india highest prefix", CountryIndia, "9999999999", true},
		{"india too short", CountryIndia, "703994099", false},
		{"india too long", CountryIndia, "70399409981", false},
		{"india non-digit", CountryIndia, "70399a0998", false},

		{"us number", CountryUSA, "2125551234", true},
		{"us lowest valid area code", CountryUSA, "2000000000", true},
		{"us area code below range", CountryUSA, "1999999999", false},
		{"us leading zero", CountryUSA, "0125551234", false},
		{"us too short", CountryUSA, "212555123", false},

		{"uk mobile", CountryUK, "7700900123", true},
		{"uk wrong prefix", CountryUK, "8700900123", false},
		{"uk too short", CountryUK, "770090012", false},
		{"uk too long", CountryUK, "77009001234", false},

		{"unknown country code", CountryCode("+49"), "1701234567", false},
		{"empty everything", CountryCode(""), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PhoneCandidate{CountryCode: tt.cc, LocalNumber: tt.local}
			if got := p.Valid(); got != tt.want {
				t.Errorf("Valid(%s %s) = %v, want %v", tt.cc, tt.local, got, tt.want)
			}
		})
	}
}

func TestPhoneCandidate_E164(t *testing.T) {
	p := PhoneCandidate{CountryCode: CountryIndia, LocalNumber: "7039940998"}
	if got := p.E164(); got != "+917039940998" {
		t.Errorf("E164() = %q", got)
	}
}

func TestPhoneCandidate_AllowedIn(t *testing.T) {
	india := PhoneCandidate{CountryCode: CountryIndia, LocalNumber: "7039940998"}
	uk := PhoneCandidate{CountryCode: CountryUK, LocalNumber: "7700900123"}
	unknown := PhoneCandidate{CountryCode: CountryCode("+49"), LocalNumber: "1701234567"}

	tests := []struct {
		name    string
		p       PhoneCandidate
		regions []Region
		want    bool
	}{
		{"listed region", india, []Region{RegionIndia}, true},
		{"unlisted region", uk, []Region{RegionIndia, RegionUSA}, false},
		{"global admits any known country", uk, []Region{RegionGlobal}, true},
		{"global does not admit unknown codes", unknown, []Region{RegionGlobal}, false},
		{"empty list admits nothing", india, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.AllowedIn(tt.regions); got != tt.want {
				t.Errorf("AllowedIn(%v) = %v, want %v", tt.regions, got, tt.want)
			}
		})
	}
}

func TestHelperText(t *testing.T) {
	if got := HelperText(CountryIndia); got == "" || got == HelperText(CountryUK) {
		t.Error("helper text must be country specific")
	}
	if got := HelperText(CountryCode("+49")); got != "Select country and enter phone number" {
		t.Errorf("unknown country helper = %q", got)
	}
}
