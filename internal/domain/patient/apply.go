package patient

// Typed per-section patches. The original UI updated nested sections by
// splitting stringly-typed "section.field" input names and merging maps;
// these apply functions replace that with one function per section taking a
// partial value whose nil fields are left untouched.

// ContactPatch is a partial update of the contact section.
type ContactPatch struct {
	Email       *string
	Phone       *string
	MobilePhone *string
}

func (p *Patient) ApplyContact(patch ContactPatch) {
	if patch.Email != nil {
		p.Contact.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Contact.Phone = *patch.Phone
	}
	if patch.MobilePhone != nil {
		p.Contact.MobilePhone = *patch.MobilePhone
	}
}

// AddressPatch is a partial update of the address section.
type AddressPatch struct {
	Line1      *string
	Line2      *string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
}

func (p *Patient) ApplyAddress(patch AddressPatch) {
	if patch.Line1 != nil {
		p.Address.Line1 = *patch.Line1
	}
	if patch.Line2 != nil {
		p.Address.Line2 = *patch.Line2
	}
	if patch.City != nil {
		p.Address.City = *patch.City
	}
	if patch.State != nil {
		p.Address.State = *patch.State
	}
	if patch.PostalCode != nil {
		p.Address.PostalCode = *patch.PostalCode
	}
	if patch.Country != nil {
		p.Address.Country = *patch.Country
	}
}

// IdentifiersPatch is a partial update of the identifier section.
type IdentifiersPatch struct {
	Aadhaar *string
	PAN     *string
}

func (p *Patient) ApplyIdentifiers(patch IdentifiersPatch) {
	if patch.Aadhaar != nil {
		p.Identifiers.Aadhaar = *patch.Aadhaar
	}
	if patch.PAN != nil {
		p.Identifiers.PAN = *patch.PAN
	}
}

// PreferencesPatch is a partial update of the preferences section.
type PreferencesPatch struct {
	ContactMethod        *string
	AppointmentReminders *bool
}

func (p *Patient) ApplyPreferences(patch PreferencesPatch) {
	if patch.ContactMethod != nil {
		p.Preferences.ContactMethod = *patch.ContactMethod
	}
	if patch.AppointmentReminders != nil {
		p.Preferences.AppointmentReminders = *patch.AppointmentReminders
	}
}

// AdvanceDirectivesPatch is a partial update of the advance directives
// section.
type AdvanceDirectivesPatch struct {
	LivingWill      *bool
	PowerOfAttorney *string
}

func (p *Patient) ApplyAdvanceDirectives(patch AdvanceDirectivesPatch) {
	if patch.LivingWill != nil {
		p.AdvanceDirectives.LivingWill = *patch.LivingWill
	}
	if patch.PowerOfAttorney != nil {
		p.AdvanceDirectives.PowerOfAttorney = *patch.PowerOfAttorney
	}
}
