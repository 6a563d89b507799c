package patient

import "strings"

// Reference lists for the enumerated-ish fields the registry UI offers as
// dropdowns. Validation accepts them case-insensitively; address fields stay
// free text.

// IndianLanguages are the scheduled languages plus English, accepted for
// preferredLanguage.
var IndianLanguages = []string{
	"Assamese", "Bengali", "Bodo", "Dogri", "Gujarati", "Hindi", "Kannada", "Kashmiri",
	"Konkani", "Maithili", "Malayalam", "Manipuri", "Marathi", "Nepali", "Odia",
	"Punjabi", "Sanskrit", "Santali", "Sindhi", "Tamil", "Telugu", "Urdu", "English",
}

// ValidRelationships are the accepted emergency-contact relationships.
var ValidRelationships = []string{
	"Father", "Mother", "Spouse", "Sibling", "Son", "Daughter", "Friend",
	"Guardian", "Grandparent", "Partner", "Uncle", "Aunt", "Other",
}

func isIndianLanguage(s string) bool    { return containsFold(IndianLanguages, s) }
func isKnownRelationship(s string) bool { return containsFold(ValidRelationships, s) }

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
