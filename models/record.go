package models

// Period is a date range with an optional free-text override. Raw, when set,
// is what gets displayed; Start and End are independently optional.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Raw   string `json:"raw"`
}

// PersonalDetails holds the flat identity fields stored at the root of the record.
type PersonalDetails struct {
	Name               string `json:"name" validate:"required"`
	FatherName         string `json:"father_name" validate:"required"`
	DateOfBirth        string `json:"date_of_birth" validate:"required"`
	Gender             string `json:"gender" validate:"required"`
	Email              string `json:"email" validate:"omitempty,email"`
	Phone              string `json:"phone"`
	Nationality        string `json:"nationality" validate:"required"`
	PANCard            string `json:"pan_card" validate:"omitempty,pan"`
	AadharCard         string `json:"aadhar_card" validate:"omitempty,aadhaar"`
	DIN                string `json:"din"`
	PassportNo         string `json:"passport_no"`
	PassportIssueDate  string `json:"passport_issue_date"`
	PassportExpiryDate string `json:"passport_expiry_date"`
	Religion           string `json:"religion"`
}

type Address struct {
	FullAddress    string `json:"full_address" validate:"required"`
	TownOrCityName string `json:"town_or_city_name" validate:"required"`
	State          string `json:"state"`
	PostalCode     string `json:"postal_code"`
	PhoneNumber    string `json:"phone_number"`
	DurationOfStay Period `json:"duration_of_stay"`
}

type PreviousAddress struct {
	TownOrCityName string `json:"town_or_city_name"`
	PhoneNumber    string `json:"phone_number"`
	DurationOfStay Period `json:"duration_of_stay"`
	AddressType    string `json:"address_type,omitempty"`
}

type Qualification struct {
	UniversityAndCollege string `json:"university_and_college"`
	LocationFullAddress  string `json:"location_full_address"`
	DegreeOrCourse       string `json:"degree_or_course"`
	Period               Period `json:"period"`
	RollOrRegistration   string `json:"roll_or_registration"`
}

type Employment struct {
	EmployerNameAndBranch string `json:"employer_name_and_branch"`
	PositionAndDepartment string `json:"position_and_department"`
	Landline              string `json:"landline"`
	EmploymentPeriod      Period `json:"employment_period"`
	EmployeeCode          string `json:"employee_code"`
	LastSalary            string `json:"last_salary"`
	ReasonForLeaving      string `json:"reason_for_leaving"`
	ReportingManager      string `json:"reporting_manager"`
	AgencyDetails         string `json:"agency_details"`
	ContractAgency        string `json:"contract_agency"`
	CanVerify             bool   `json:"can_verify"`
}

type Reference struct {
	Name                  string `json:"name"`
	Phone                 string `json:"phone"`
	DesignationAndCompany string `json:"designation_and_company"`
}

type Gap struct {
	Reason           string `json:"reason"`
	Period           Period `json:"period"`
	AddressDuringGap string `json:"address_during_gap"`
}

type Nominee struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	Relationship string `json:"relationship"`
	DateOfBirth  string `json:"date_of_birth"`
	Share        string `json:"share"`
}

type FamilyMember struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Age          string `json:"age"`
	Address      string `json:"address"`
}

type EPFGratuity struct {
	PFAccountNo       string       `json:"pf_account_no"`
	MaritalStatus     string       `json:"marital_status" validate:"omitempty,oneof=single married divorced widowed"`
	Religion          string       `json:"religion"`
	Department        string       `json:"department"`
	PostHeld          string       `json:"post_held"`
	DateOfAppointment string       `json:"date_of_appointment"`
	Nominee           Nominee      `json:"nominee"`
	FamilyMember1     FamilyMember `json:"family_member_1"`
	Witnesses         []string     `json:"witnesses"`
	FormSignDate      string       `json:"form_sign_date"`
	FormSignPlace     string       `json:"form_sign_place"`
	EmployerName      string       `json:"employer_name"`
	EmployerAddress   string       `json:"employer_address"`
}

// PersonRecord is the aggregate collected by the wizard. It holds only value
// structs and slices; slices are never written in place once published, so a
// shallow copy of a record is a stable snapshot.
type PersonRecord struct {
	PersonalDetails

	CurrentAddress        Address           `json:"current_address"`
	PermanentAddress      Address           `json:"permanent_address"`
	PreviousAddress       PreviousAddress   `json:"previous_address"`
	PreviousAddresses     []PreviousAddress `json:"previous_addresses"`
	HighestQualification  Qualification     `json:"highest_qualification"`
	PreviousQualification Qualification     `json:"previous_qualification"`
	CurrentEmployment     Employment        `json:"current_employment"`
	EmploymentHistory     []Employment      `json:"employment_history"`
	References            []Reference       `json:"references"`
	Gaps                  Gap               `json:"gaps"`
	EPFAndGratuity        EPFGratuity       `json:"epf_and_gratuity"`
}
