// Package patient holds the patient record schema shared by the registry
// API client and the admin CLI, together with draft validation and the
// in-memory directory used for client-side search.
package patient

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Gender values accepted for both genderIdentity and biologicalSex.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Date is a calendar date serialized as "2006-01-02" on the wire. The
// backend sends date-only strings for birthDate/deathDate; RFC 3339
// timestamps are tolerated on decode.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.Format(dateLayout), nil
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Date) parse(s string) error {
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

// Contact holds the patient's own reachability details.
type Contact struct {
	Email       string `json:"email" yaml:"email"`
	Phone       string `json:"phone" yaml:"phone"`
	MobilePhone string `json:"mobilePhone" yaml:"mobilePhone"`
}

// Address is a free-text postal address.
type Address struct {
	Line1      string `json:"line1" yaml:"line1"`
	Line2      string `json:"line2" yaml:"line2"`
	City       string `json:"city" yaml:"city"`
	State      string `json:"state" yaml:"state"`
	PostalCode string `json:"postalCode" yaml:"postalCode"`
	Country    string `json:"country" yaml:"country"`
}

// Identifiers carries government-issued identifiers beyond ABHA/MRN.
type Identifiers struct {
	Aadhaar string `json:"aadhaar" yaml:"aadhaar"`
	PAN     string `json:"pan" yaml:"pan"`
}

// EmergencyContact is one entry of the patient's ordered contact list.
type EmergencyContact struct {
	Name         string `json:"name" yaml:"name"`
	Relationship string `json:"relationship" yaml:"relationship"`
	Phone        string `json:"phone" yaml:"phone"`
}

// Preferences holds communication preferences.
type Preferences struct {
	ContactMethod        string `json:"contactMethod" yaml:"contactMethod"`
	AppointmentReminders bool   `json:"appointmentReminders" yaml:"appointmentReminders"`
}

// AdvanceDirectives records the patient's advance-care choices.
type AdvanceDirectives struct {
	LivingWill      bool   `json:"livingWill" yaml:"livingWill"`
	PowerOfAttorney string `json:"powerOfAttorney" yaml:"powerOfAttorney"`
}

// Race is a nested category/detail pair.
type Race struct {
	Category string `json:"category" yaml:"category"`
	Detail   string `json:"detail" yaml:"detail"`
}

// Patient is the registry's central entity. ID and UPID are assigned by the
// backend on create and never generated client-side. NetworkID scopes the
// record to a tenant and is immutable after create. The nested value objects
// (contact, address, identifier, preferences, advanceDirectives) are always
// present as objects on the wire, even when every leaf is empty.
type Patient struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	UPID      string `json:"upid,omitempty" yaml:"upid,omitempty"`
	NetworkID string `json:"networkId,omitempty" yaml:"networkId,omitempty"`
	ABHA      string `json:"abha,omitempty" yaml:"abha,omitempty"`
	MRN       string `json:"mrn,omitempty" yaml:"mrn,omitempty"`

	Prefix        string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	GivenName     string `json:"givenName,omitempty" yaml:"givenName,omitempty"`
	MiddleName    string `json:"middleName,omitempty" yaml:"middleName,omitempty"`
	FamilyName    string `json:"familyName,omitempty" yaml:"familyName,omitempty"`
	Suffix        string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	PreferredName string `json:"preferredName,omitempty" yaml:"preferredName,omitempty"`

	BirthDate           *Date  `json:"birthDate,omitempty" yaml:"birthDate,omitempty"`
	DeathDate           *Date  `json:"deathDate,omitempty" yaml:"deathDate,omitempty"`
	GenderIdentity      string `json:"genderIdentity,omitempty" yaml:"genderIdentity,omitempty"`
	BiologicalSex       string `json:"biologicalSex,omitempty" yaml:"biologicalSex,omitempty"`
	Pronouns            string `json:"pronouns,omitempty" yaml:"pronouns,omitempty"`
	MaritalStatus       string `json:"maritalStatus,omitempty" yaml:"maritalStatus,omitempty"`
	BloodType           string `json:"bloodType,omitempty" yaml:"bloodType,omitempty"`
	Ethnicity           string `json:"ethnicity,omitempty" yaml:"ethnicity,omitempty"`
	Race                Race   `json:"race" yaml:"race"`
	PreferredLanguage   string `json:"preferredLanguage,omitempty" yaml:"preferredLanguage,omitempty"`
	InterpreterRequired bool   `json:"interpreterRequired" yaml:"interpreterRequired"`
	OrganDonor          bool   `json:"organDonor" yaml:"organDonor"`

	Contact           Contact            `json:"contact" yaml:"contact"`
	Address           Address            `json:"address" yaml:"address"`
	Identifiers       Identifiers        `json:"identifier" yaml:"identifier"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts,omitempty" yaml:"emergencyContacts,omitempty"`
	Preferences       Preferences        `json:"preferences" yaml:"preferences"`
	AdvanceDirectives AdvanceDirectives  `json:"advanceDirectives" yaml:"advanceDirectives"`

	PreferredPharmacy   string `json:"preferredPharmacy,omitempty" yaml:"preferredPharmacy,omitempty"`
	PrimaryCareProvider string `json:"primaryCareProvider,omitempty" yaml:"primaryCareProvider,omitempty"`

	Active    bool   `json:"active" yaml:"active"`
	StatusID  int    `json:"statusId,omitempty" yaml:"statusId,omitempty"`
	CreatedBy string `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	UpdatedBy string `json:"updatedBy,omitempty" yaml:"updatedBy,omitempty"`
}

// NewDraft returns an empty patient draft scoped to the given network. The
// draft carries no ID/UPID; those are assigned by the backend.
func NewDraft(networkID string) *Patient {
	return &Patient{
		NetworkID: networkID,
		Active:    true,
	}
}

// DisplayName joins the non-empty name parts in display order.
func (p *Patient) DisplayName() string {
	parts := make([]string, 0, 6)
	for _, s := range []string{p.Prefix, p.GivenName, p.MiddleName, p.FamilyName, p.Suffix} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Deceased reports whether a death date is recorded.
func (p *Patient) Deceased() bool { return p.DeathDate != nil }

// Merge overlays a partial payload (decoded from a draft file) onto base and
// returns the result. Keys absent from the partial keep their base values.
// Server-owned and immutable fields (id, upid, networkId) in the partial are
// ignored.
func Merge(base Patient, partial map[string]interface{}) (Patient, error) {
	delete(partial, "id")
	delete(partial, "upid")
	delete(partial, "networkId")

	raw, err := json.Marshal(partial)
	if err != nil {
		return base, fmt.Errorf("encode partial payload: %w", err)
	}
	merged := base
	if err := json.Unmarshal(raw, &merged); err != nil {
		return base, fmt.Errorf("apply partial payload: %w", err)
	}
	return merged, nil
}
