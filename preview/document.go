package preview

import (
	"fmt"

	"formwizard-go/models"
)

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Group struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

type Section struct {
	Title  string  `json:"title"`
	Groups []Group `json:"groups"`
}

// Document is the full preview of a record, section by section.
type Document struct {
	Sections []Section `json:"sections"`
}

// Build lays out rec the way the preview screen shows it. Optional sections
// are left out when their presence rule says so; everything else is always
// present, with NotProvided standing in for empty values.
func (f *Formatter) Build(rec models.PersonRecord) Document {
	doc := Document{Sections: []Section{
		f.personal(rec),
		f.addresses(rec),
		f.education(rec),
		f.employment(rec),
	}}
	if ShowReferences(&rec) {
		doc.Sections = append(doc.Sections, f.references(rec))
	}
	if ShowGaps(&rec) {
		doc.Sections = append(doc.Sections, f.gaps(rec))
	}
	if ShowEPF(&rec) {
		doc.Sections = append(doc.Sections, f.epf(rec))
	}
	return doc
}

func (f *Formatter) personal(rec models.PersonRecord) Section {
	return Section{Title: "Personal Information", Groups: []Group{{Fields: []Field{
		{"Name", Text(rec.Name)},
		{"Father's Name", Text(rec.FatherName)},
		{"Date of Birth", f.Date(rec.DateOfBirth)},
		{"Gender", Text(rec.Gender)},
		{"Email", Text(rec.Email)},
		{"Phone", Text(rec.Phone)},
		{"Nationality", Text(rec.Nationality)},
		{"PAN Card", Text(rec.PANCard)},
		{"Aadhar Card", Text(rec.AadharCard)},
		{"Religion", Text(rec.Religion)},
	}}}}
}

func (f *Formatter) addresses(rec models.PersonRecord) Section {
	address := func(title string, a models.Address) Group {
		line := a.FullAddress
		if line == "" {
			line = a.TownOrCityName
		}
		return Group{Title: title, Fields: []Field{
			{"Address", Text(line)},
			{"Phone", Text(a.PhoneNumber)},
			{"Duration", f.Period(&a.DurationOfStay)},
		}}
	}

	groups := []Group{
		address("Current Address", rec.CurrentAddress),
		address("Permanent Address", rec.PermanentAddress),
		{Title: "Previous Address", Fields: []Field{
			{"Address", Text(rec.PreviousAddress.TownOrCityName)},
			{"Phone", Text(rec.PreviousAddress.PhoneNumber)},
			{"Duration", f.Period(&rec.PreviousAddress.DurationOfStay)},
		}},
	}
	for i, prev := range rec.PreviousAddresses {
		groups = append(groups, Group{Title: fmt.Sprintf("Previous Address %d", i+1), Fields: []Field{
			{"Address", Text(prev.TownOrCityName)},
			{"Phone", Text(prev.PhoneNumber)},
			{"Duration", f.Period(&prev.DurationOfStay)},
		}})
	}
	return Section{Title: "Address Information", Groups: groups}
}

func (f *Formatter) education(rec models.PersonRecord) Section {
	qualification := func(title string, q models.Qualification) Group {
		fields := []Field{
			{"Institution", Text(q.UniversityAndCollege)},
			{"Degree", Text(q.DegreeOrCourse)},
			{"Location", Text(q.LocationFullAddress)},
			{"Period", f.Period(&q.Period)},
		}
		if q.RollOrRegistration != "" {
			fields = append(fields, Field{"Roll/Registration", q.RollOrRegistration})
		}
		return Group{Title: title, Fields: fields}
	}

	return Section{Title: "Education Information", Groups: []Group{
		qualification("Highest Qualification", rec.HighestQualification),
		qualification("Previous Qualification", rec.PreviousQualification),
	}}
}

func (f *Formatter) employment(rec models.PersonRecord) Section {
	job := func(title string, e models.Employment) Group {
		return Group{Title: title, Fields: []Field{
			{"Employer", Text(e.EmployerNameAndBranch)},
			{"Position", Text(e.PositionAndDepartment)},
			{"Employee Code", Text(e.EmployeeCode)},
			{"Last Salary", Text(e.LastSalary)},
			{"Period", f.Period(&e.EmploymentPeriod)},
			{"Reason for Leaving", Text(e.ReasonForLeaving)},
		}}
	}

	groups := []Group{job("Current Employment", rec.CurrentEmployment)}
	for i, e := range rec.EmploymentHistory {
		groups = append(groups, job(fmt.Sprintf("Previous Employment %d", i+1), e))
	}
	return Section{Title: "Employment Information", Groups: groups}
}

func (f *Formatter) references(rec models.PersonRecord) Section {
	groups := make([]Group, 0, len(rec.References))
	for i, r := range rec.References {
		groups = append(groups, Group{Title: fmt.Sprintf("Reference %d", i+1), Fields: []Field{
			{"Name", Text(r.Name)},
			{"Phone", Text(r.Phone)},
			{"Designation & Company", Text(r.DesignationAndCompany)},
		}})
	}
	return Section{Title: "References", Groups: groups}
}

func (f *Formatter) gaps(rec models.PersonRecord) Section {
	return Section{Title: "Employment Gaps", Groups: []Group{{Fields: []Field{
		{"Reason", Text(rec.Gaps.Reason)},
		{"Period", f.Period(&rec.Gaps.Period)},
		{"Address During Gap", Text(rec.Gaps.AddressDuringGap)},
	}}}}
}

func (f *Formatter) epf(rec models.PersonRecord) Section {
	epf := rec.EPFAndGratuity
	return Section{Title: "EPF & Gratuity", Groups: []Group{{Fields: []Field{
		{"PF Account Number", Text(epf.PFAccountNo)},
		{"Marital Status", Text(epf.MaritalStatus)},
		{"Department", Text(epf.Department)},
		{"Post Held", Text(epf.PostHeld)},
		{"Date of Appointment", f.Date(epf.DateOfAppointment)},
		{"Employer Name", Text(epf.EmployerName)},
	}}}}
}
