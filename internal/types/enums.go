package types

// Syndicate focus values
const (
	FocusSeed  = "seed"
	FocusSeed1 = "seed1"
	FocusSeed2 = "seed2"
)

// Syndicate industry values
const (
	IndustryBiotech  = "biotech"
	IndustryBiotech1 = "biotech1"
	IndustryBiotech2 = "biotech2"
)

// Syndicate privacy values
const (
	PrivacyPublic  = "public"
	PrivacyPublic1 = "public1"
	PrivacyPublic2 = "public2"
)

// Syndicate currency values
const (
	CurrencyUSD = "usd"
	CurrencyAMD = "amd"
	CurrencyEUR = "eur"
	CurrencyRUB = "rub"
)

// Syndicate investment horizon values
const (
	HorizonThreeYear = "3year"
)

// Valid values for validation
var ValidFocusTypes = []string{
	FocusSeed, FocusSeed1, FocusSeed2,
}

var ValidIndustryTypes = []string{
	IndustryBiotech, IndustryBiotech1, IndustryBiotech2,
}

var ValidPrivacyTypes = []string{
	PrivacyPublic, PrivacyPublic1, PrivacyPublic2,
}

var ValidCurrencyTypes = []string{
	CurrencyUSD, CurrencyAMD, CurrencyEUR, CurrencyRUB,
}

var ValidHorizonTypes = []string{
	HorizonThreeYear,
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// Helper functions for validation
func IsValidFocus(focus string) bool {
	return contains(ValidFocusTypes, focus)
}

func IsValidIndustry(industry string) bool {
	return contains(ValidIndustryTypes, industry)
}

func IsValidPrivacy(privacy string) bool {
	return contains(ValidPrivacyTypes, privacy)
}

func IsValidCurrency(currency string) bool {
	return contains(ValidCurrencyTypes, currency)
}

func IsValidHorizon(horizon string) bool {
	return contains(ValidHorizonTypes, horizon)
}
