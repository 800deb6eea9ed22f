package model

import (
	"strings"
	"time"
	"unicode"

	"medstaff-dashboard/internal/domain"
)

const dateLayout = "2006-01-02"

// PersonalInformation is the first step of every onboarding path.
type PersonalInformation struct {
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	Email         string `json:"email,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	DialCode      string `json:"dialCode,omitempty"`
	DOB           string `json:"dob,omitempty"`
	Gender        string `json:"gender,omitempty"`
	MaritalStatus string `json:"maritalStatus,omitempty"`
	Category      string `json:"category,omitempty"`
}

// Temp extracts the fields carried to the address step.
func (p PersonalInformation) Temp() TempPersonalInfo {
	return TempPersonalInfo{
		PhoneNumber:   p.PhoneNumber,
		MaritalStatus: p.MaritalStatus,
		DialCode:      p.DialCode,
		DOB:           p.DOB,
		Category:      p.Category,
	}
}

// PostalAddress is the wire shape of both addresses in the combined payload.
type PostalAddress struct {
	Country  string `json:"country"`
	State    string `json:"state,omitempty"`
	City     string `json:"city"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	ZipCode  string `json:"zipCode"`
}

// AddressInformation is the second step. Older clients send
// isCorrespondenceAddressSame instead of sameCorrespondenceAddress; either flag set
// means the correspondence address mirrors the primary one.
type AddressInformation struct {
	Country                     string         `json:"country,omitempty"`
	State                       string         `json:"state,omitempty"`
	City                        string         `json:"city,omitempty"`
	AddressLine1                string         `json:"addressLine1,omitempty"`
	AddressLine2                string         `json:"addressLine2,omitempty"`
	ZipCode                     string         `json:"zipCode,omitempty"`
	SameCorrespondenceAddress   bool           `json:"sameCorrespondenceAddress"`
	IsCorrespondenceAddressSame *bool          `json:"isCorrespondenceAddressSame,omitempty"`
	CorrespondenceAddress       *PostalAddress `json:"correspondenceAddress,omitempty"`
}

func (a AddressInformation) Primary() PostalAddress {
	return PostalAddress{
		Country:  a.Country,
		State:    a.State,
		City:     a.City,
		Address1: a.AddressLine1,
		Address2: a.AddressLine2,
		ZipCode:  a.ZipCode,
	}
}

func (a AddressInformation) MirrorsPrimary() bool {
	if a.SameCorrespondenceAddress {
		return true
	}
	return a.IsCorrespondenceAddressSame != nil && *a.IsCorrespondenceAddressSame
}

// Correspondence resolves the address used for correspondence at submission time.
func (a AddressInformation) Correspondence() PostalAddress {
	if a.MirrorsPrimary() || a.CorrespondenceAddress == nil {
		return a.Primary()
	}
	return *a.CorrespondenceAddress
}

// Identification references uploaded identity documents.
type Identification struct {
	DocumentType     string `json:"documentType,omitempty"`
	DocumentNumber   string `json:"documentNumber,omitempty"`
	IssuingCountry   string `json:"issuingCountry,omitempty"`
	ExpiryDate       string `json:"expiryDate,omitempty"`
	FrontDocumentRef string `json:"frontDocumentRef,omitempty"`
	BackDocumentRef  string `json:"backDocumentRef,omitempty"`
	SelfieRef        string `json:"selfieRef,omitempty"`
}

// FinancialInformation holds payout bank details.
type FinancialInformation struct {
	BankName          string `json:"bankName,omitempty"`
	AccountHolderName string `json:"accountHolderName,omitempty"`
	AccountNumber     string `json:"accountNumber,omitempty"`
	SortCode          string `json:"sortCode,omitempty"`
	IBAN              string `json:"iban,omitempty"`
	SwiftCode         string `json:"swiftCode,omitempty"`
	TaxID             string `json:"taxId,omitempty"`
}

// FormData aggregates every step's values. Nil sections have not been filled in.
type FormData struct {
	PersonalInformation  *PersonalInformation  `json:"personalInformation,omitempty"`
	AddressInformation   *AddressInformation   `json:"addressInformation,omitempty"`
	Identification       *Identification       `json:"identification,omitempty"`
	FinancialInformation *FinancialInformation `json:"financialInformation,omitempty"`
}

// Overlay replaces every section that is set in src.
func (f *FormData) Overlay(src *FormData) {
	if src == nil {
		return
	}
	if src.PersonalInformation != nil {
		cp := *src.PersonalInformation
		f.PersonalInformation = &cp
	}
	if src.AddressInformation != nil {
		cp := *src.AddressInformation
		f.AddressInformation = &cp
	}
	if src.Identification != nil {
		cp := *src.Identification
		f.Identification = &cp
	}
	if src.FinancialInformation != nil {
		cp := *src.FinancialInformation
		f.FinancialInformation = &cp
	}
}

// Clone returns a deep copy.
func (f FormData) Clone() FormData {
	var out FormData
	out.Overlay(&f)
	return out
}

// StepValues is one step's submitted payload; exactly one section is set.
type StepValues struct {
	Personal       *PersonalInformation
	Address        *AddressInformation
	Identification *Identification
	Financial      *FinancialInformation
}

// Matches reports whether the set section belongs to step.
func (v StepValues) Matches(step StepName) bool {
	switch step {
	case StepPersonalInformation:
		return v.Personal != nil
	case StepAddressInformation:
		return v.Address != nil
	case StepIdentification:
		return v.Identification != nil
	case StepFinancialInformation:
		return v.Financial != nil
	}
	return false
}

// Record copies the submitted section into f.
func (v StepValues) Record(f *FormData) {
	f.Overlay(&FormData{
		PersonalInformation:  v.Personal,
		AddressInformation:   v.Address,
		Identification:       v.Identification,
		FinancialInformation: v.Financial,
	})
}

// CombinedPayload is the single UpdateForm body built from the buffered personal
// fields and the address step.
type CombinedPayload struct {
	PhoneNumber               string        `json:"phoneNumber,omitempty"`
	MaritalStatus             string        `json:"maritalStatus,omitempty"`
	DialCode                  string        `json:"dialCode,omitempty"`
	DOB                       string        `json:"dob,omitempty"`
	Category                  string        `json:"category,omitempty"`
	Address                   PostalAddress `json:"address"`
	SameCorrespondenceAddress bool          `json:"sameCorrespondenceAddress"`
	CorrespondenceAddress     PostalAddress `json:"correspondenceAddress"`
}

// BuildCombinedPayload merges the buffer with the address step. When the address is
// flagged as its own correspondence address, the correspondence block is a
// field-for-field copy of the primary one.
func BuildCombinedPayload(personal TempPersonalInfo, addr AddressInformation) CombinedPayload {
	return CombinedPayload{
		PhoneNumber:               personal.PhoneNumber,
		MaritalStatus:             personal.MaritalStatus,
		DialCode:                  personal.DialCode,
		DOB:                       personal.DOB,
		Category:                  personal.Category,
		Address:                   addr.Primary(),
		SameCorrespondenceAddress: addr.MirrorsPrimary(),
		CorrespondenceAddress:     addr.Correspondence(),
	}
}

// UpdateFormResponse is the account service's answer. Status != true is a business
// failure even on HTTP 200.
type UpdateFormResponse struct {
	Status  bool      `json:"status"`
	Message string    `json:"message,omitempty"`
	Data    *FormData `json:"data,omitempty"`
}

// Validation is deliberately loose: most fields are optional, only malformed values
// are rejected.

func (p PersonalInformation) Validate() error {
	ve := &domain.ValidationError{}
	if p.DOB != "" {
		dob, err := time.Parse(dateLayout, p.DOB)
		if err != nil {
			ve.Add("dob", "must be a date in YYYY-MM-DD format")
		} else if dob.After(time.Now()) {
			ve.Add("dob", "cannot be in the future")
		}
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		ve.Add("email", "must be a valid email address")
	}
	return ve.OrNil()
}

func (a AddressInformation) Validate() error {
	ve := &domain.ValidationError{}
	if !validZip(a.ZipCode) {
		ve.Add("zipCode", "may only contain letters, digits, spaces and hyphens")
	}
	if c := a.CorrespondenceAddress; c != nil && !a.MirrorsPrimary() && !validZip(c.ZipCode) {
		ve.Add("correspondenceAddress.zipCode", "may only contain letters, digits, spaces and hyphens")
	}
	return ve.OrNil()
}

func (i Identification) Validate() error {
	ve := &domain.ValidationError{}
	if i.ExpiryDate != "" {
		if _, err := time.Parse(dateLayout, i.ExpiryDate); err != nil {
			ve.Add("expiryDate", "must be a date in YYYY-MM-DD format")
		}
	}
	return ve.OrNil()
}

func (f FinancialInformation) Validate() error {
	ve := &domain.ValidationError{}
	if f.IBAN != "" && len(strings.ReplaceAll(f.IBAN, " ", "")) < 15 {
		ve.Add("iban", "is too short")
	}
	return ve.OrNil()
}

// Validate runs the rules of the set section.
func (v StepValues) Validate() error {
	switch {
	case v.Personal != nil:
		return v.Personal.Validate()
	case v.Address != nil:
		return v.Address.Validate()
	case v.Identification != nil:
		return v.Identification.Validate()
	case v.Financial != nil:
		return v.Financial.Validate()
	}
	return domain.ErrInvalidArgument
}

func validZip(z string) bool {
	for _, r := range z {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == ' ', r == '-':
		default:
			return false
		}
	}
	return true
}
