package models

// DefaultRecord returns the record a new wizard session starts from.
func DefaultRecord() PersonRecord {
	return PersonRecord{
		CurrentAddress:    Address{},
		PermanentAddress:  Address{},
		PreviousAddress:   PreviousAddress{},
		PreviousAddresses: []PreviousAddress{},
		CurrentEmployment: Employment{CanVerify: true},
		EmploymentHistory: []Employment{},
		References:        []Reference{},
		EPFAndGratuity: EPFGratuity{
			Witnesses: []string{},
		},
	}
}

// NewEmployment is the template for an employment_history entry.
func NewEmployment() Employment {
	return Employment{CanVerify: true}
}

func NewReference() Reference {
	return Reference{}
}

func NewPreviousAddress() PreviousAddress {
	return PreviousAddress{AddressType: "previous"}
}

// NewWitness is the template for a witness entry: an empty name.
func NewWitness() string {
	return ""
}
