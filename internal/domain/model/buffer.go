package model

// TempPersonalInfo is the subset of the personal step that travels with the address
// submission. It lives only in memory.
type TempPersonalInfo struct {
	PhoneNumber   string `json:"phoneNumber"`
	MaritalStatus string `json:"maritalStatus"`
	DialCode      string `json:"dialCode"`
	DOB           string `json:"dob"`
	Category      string `json:"category"`
}

// PersonalInfoBuffer holds TempPersonalInfo between the personal and address steps.
// It is never written to a snapshot.
type PersonalInfoBuffer struct {
	info *TempPersonalInfo
}

func (b *PersonalInfoBuffer) Set(info TempPersonalInfo) {
	cp := info
	b.info = &cp
}

// Get returns a copy of the buffered info, or nil when empty.
func (b *PersonalInfoBuffer) Get() *TempPersonalInfo {
	if b.info == nil {
		return nil
	}
	cp := *b.info
	return &cp
}

func (b *PersonalInfoBuffer) Clear() { b.info = nil }

func (b *PersonalInfoBuffer) Empty() bool { return b.info == nil }
