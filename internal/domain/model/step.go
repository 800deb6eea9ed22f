package model

// StepName identifies one screen of the onboarding wizard.
type StepName string

const (
	StepPersonalInformation  StepName = "personalInformation"
	StepAddressInformation   StepName = "addressInformation"
	StepIdentification       StepName = "identification"
	StepFinancialInformation StepName = "financialInformation"
)

// StepStatus is the ledger state of a single step.
type StepStatus string

const (
	StatusPending  StepStatus = "pending"
	StatusCurrent  StepStatus = "current"
	StatusComplete StepStatus = "complete"
)

func (s StepStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCurrent, StatusComplete:
		return true
	}
	return false
}

// StepDefinition drives the controller's transition logic. Which steps are "special"
// is configuration, not something the controller checks by name.
type StepDefinition struct {
	Name StepName `json:"name"`
	// CapturesPersonalInfo copies selected fields into the cross-step buffer on submit.
	CapturesPersonalInfo bool `json:"capturesPersonalInfo"`
	// RequiresRemoteSubmit sends the combined payload to the account service and
	// needs a populated buffer.
	RequiresRemoteSubmit bool `json:"requiresRemoteSubmit"`
}

var (
	personalStep       = StepDefinition{Name: StepPersonalInformation, CapturesPersonalInfo: true}
	addressStep        = StepDefinition{Name: StepAddressInformation, RequiresRemoteSubmit: true}
	identificationStep = StepDefinition{Name: StepIdentification}
	financialStep      = StepDefinition{Name: StepFinancialInformation}
)
