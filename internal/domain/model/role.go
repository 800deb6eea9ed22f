package model

import "strings"

// RoleKind is the onboarding path a user signed up for.
type RoleKind string

const (
	RoleIndividual RoleKind = "individual"
	RoleBusiness   RoleKind = "business"
)

// RoleVariant is selected once per wizard and owns the step sequence; step count and
// the terminal step are derived from it instead of being re-checked at call sites.
type RoleVariant struct {
	kind  RoleKind
	steps []StepDefinition
}

func BusinessVariant() RoleVariant {
	return RoleVariant{kind: RoleBusiness, steps: []StepDefinition{personalStep, addressStep}}
}

func IndividualVariant() RoleVariant {
	return RoleVariant{kind: RoleIndividual, steps: []StepDefinition{personalStep, addressStep, identificationStep, financialStep}}
}

// VariantFor maps the externally owned signedUpAs value. Anything that is not
// "business" (individual, doctor, empty) takes the individual path.
func VariantFor(signedUpAs string) RoleVariant {
	if strings.EqualFold(strings.TrimSpace(signedUpAs), string(RoleBusiness)) {
		return BusinessVariant()
	}
	return IndividualVariant()
}

func (v RoleVariant) Kind() RoleKind    { return v.kind }
func (v RoleVariant) IsBusiness() bool  { return v.kind == RoleBusiness }
func (v RoleVariant) StepCount() int    { return len(v.steps) }
func (v RoleVariant) LastIndex() int    { return len(v.steps) - 1 }
func (v RoleVariant) IsLast(i int) bool { return i == v.LastIndex() }

// Steps returns a copy of the step sequence.
func (v RoleVariant) Steps() []StepDefinition {
	out := make([]StepDefinition, len(v.steps))
	copy(out, v.steps)
	return out
}

// Step returns the definition at index i.
func (v RoleVariant) Step(i int) (StepDefinition, bool) {
	if i < 0 || i >= len(v.steps) {
		return StepDefinition{}, false
	}
	return v.steps[i], true
}

// IndexOf returns the position of name in this variant, or -1.
func (v RoleVariant) IndexOf(name StepName) int {
	for i, s := range v.steps {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Clamp bounds a step index to the variant's sequence.
func (v RoleVariant) Clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i > v.LastIndex() {
		return v.LastIndex()
	}
	return i
}

// IsComplete is the single completion predicate: every step of this variant is
// complete. Ledger entries beyond the variant's steps are ignored.
func (v RoleVariant) IsComplete(l Ledger) bool {
	for i := range v.steps {
		if l.Status(i) != StatusComplete {
			return false
		}
	}
	return true
}
