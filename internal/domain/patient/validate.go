package patient

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	emailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobileRe  = regexp.MustCompile(`^\d{10}$`)
	aadhaarRe = regexp.MustCompile(`^\d{12}$`)
	panRe     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
)

// FieldErrors maps a field name to its validation message. A nil map means
// the record passed validation.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid patient record: " + strings.Join(parts, "; ")
}

// Fields returns the failing field names in stable order.
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Validate applies the client-side rules checked before any create/update
// submission. The backend remains authoritative; these only catch the cheap
// format mistakes before a round trip. Returns nil when the record is valid.
func Validate(p *Patient, now time.Time) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(p.ABHA) == "" {
		errs["abha"] = "ABHA is required"
	}
	if strings.TrimSpace(p.MRN) == "" {
		errs["mrn"] = "MRN is required"
	}
	if strings.TrimSpace(p.GivenName) == "" {
		errs["givenName"] = "given name is required"
	}
	if strings.TrimSpace(p.Contact.Email) == "" {
		errs["contact.email"] = "email is required"
	} else if !emailRe.MatchString(p.Contact.Email) {
		errs["contact.email"] = "email must look like local@domain"
	}

	if p.BirthDate != nil && p.BirthDate.After(now) {
		errs["birthDate"] = "birth date must not be in the future"
	}
	if p.Contact.MobilePhone != "" && !mobileRe.MatchString(p.Contact.MobilePhone) {
		errs["contact.mobilePhone"] = "mobile phone must be exactly 10 digits"
	}
	if p.Identifiers.Aadhaar != "" && !aadhaarRe.MatchString(p.Identifiers.Aadhaar) {
		errs["identifier.aadhaar"] = "Aadhaar must be exactly 12 digits"
	}
	if p.Identifiers.PAN != "" && !panRe.MatchString(p.Identifiers.PAN) {
		errs["identifier.pan"] = "PAN must match AAAAA9999A"
	}
	if p.PreferredPharmacy != "" && !isCanonicalUUID(p.PreferredPharmacy) {
		errs["preferredPharmacy"] = "preferred pharmacy must be a UUID"
	}
	if p.PrimaryCareProvider != "" && !isCanonicalUUID(p.PrimaryCareProvider) {
		errs["primaryCareProvider"] = "primary care provider must be a UUID"
	}
	if p.PreferredLanguage != "" && !isIndianLanguage(p.PreferredLanguage) {
		errs["preferredLanguage"] = "preferred language is not a recognized language"
	}
	for i, ec := range p.EmergencyContacts {
		if ec.Relationship != "" && !isKnownRelationship(ec.Relationship) {
			errs[fmt.Sprintf("emergencyContacts[%d].relationship", i)] = "relationship is not a recognized value"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// isCanonicalUUID accepts only the 8-4-4-4-12 hex form; uuid.Parse alone
// also admits braced and urn-prefixed variants.
func isCanonicalUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
