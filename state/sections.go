package state

import (
	"reflect"
	"sort"

	"github.com/pkg/errors"

	"formwizard-go/models"
)

// SectionPersonal addresses the flat identity fields at the root of the record.
const SectionPersonal = "personal"

// Section keys of the record, fixed for its whole lifetime.
const (
	SectionCurrentAddress        = "current_address"
	SectionPermanentAddress      = "permanent_address"
	SectionPreviousAddress       = "previous_address"
	SectionPreviousAddresses     = "previous_addresses"
	SectionHighestQualification  = "highest_qualification"
	SectionPreviousQualification = "previous_qualification"
	SectionCurrentEmployment     = "current_employment"
	SectionEmploymentHistory     = "employment_history"
	SectionReferences            = "references"
	SectionGaps                  = "gaps"
	SectionEPFAndGratuity        = "epf_and_gratuity"
)

// ListWitnesses addresses the witness names inside epf_and_gratuity.
const ListWitnesses = "epf_and_gratuity.witnesses"

var sections = map[string]bool{
	SectionCurrentAddress:        true,
	SectionPermanentAddress:      true,
	SectionPreviousAddress:       true,
	SectionPreviousAddresses:     true,
	SectionHighestQualification:  true,
	SectionPreviousQualification: true,
	SectionCurrentEmployment:     true,
	SectionEmploymentHistory:     true,
	SectionReferences:            true,
	SectionGaps:                  true,
	SectionEPFAndGratuity:        true,
}

// IsSection reports whether key names a nested section (not the personal group).
func IsSection(key string) bool {
	return sections[key]
}

// IsList reports whether key names a repeated section.
func IsList(key string) bool {
	_, ok := lists[key]
	return ok
}

// Sections returns the nested section keys in sorted order.
func Sections() []string {
	keys := make([]string, 0, len(sections))
	for k := range sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// listSection binds a repeated section of the record to its element template.
// Each method works on the writer's private copy of the record.
type listSection interface {
	append(rec *models.PersonRecord)
	removeAt(rec *models.PersonRecord, index int) error
	updateAt(rec *models.PersonRecord, index int, field string, value any) error
	updateAtNested(rec *models.PersonRecord, index int, nested, field string, value any) error
	normalize(rec *models.PersonRecord)
}

type sliceSection[T any] struct {
	items    func(rec *models.PersonRecord) *[]T
	template func() T
}

func (s sliceSection[T]) append(rec *models.PersonRecord) {
	items := s.items(rec)
	*items = Append(*items, s.template())
}

func (s sliceSection[T]) removeAt(rec *models.PersonRecord, index int) error {
	return s.replace(rec, func(list []T) ([]T, error) {
		return RemoveAt(list, index)
	})
}

func (s sliceSection[T]) updateAt(rec *models.PersonRecord, index int, field string, value any) error {
	return s.replace(rec, func(list []T) ([]T, error) {
		return UpdateAt(list, index, field, value)
	})
}

func (s sliceSection[T]) updateAtNested(rec *models.PersonRecord, index int, nested, field string, value any) error {
	return s.replace(rec, func(list []T) ([]T, error) {
		return UpdateAtNested(list, index, nested, field, value)
	})
}

// normalize turns a nil list, left by a wholesale section replacement that
// omitted it or sent null, back into an empty one.
func (s sliceSection[T]) normalize(rec *models.PersonRecord) {
	if items := s.items(rec); *items == nil {
		*items = []T{}
	}
}

func (s sliceSection[T]) replace(rec *models.PersonRecord, fn func([]T) ([]T, error)) error {
	items := s.items(rec)
	next, err := fn(*items)
	if err != nil {
		return err
	}
	*items = next
	return nil
}

var lists = map[string]listSection{
	SectionPreviousAddresses: sliceSection[models.PreviousAddress]{
		items:    func(rec *models.PersonRecord) *[]models.PreviousAddress { return &rec.PreviousAddresses },
		template: models.NewPreviousAddress,
	},
	SectionEmploymentHistory: sliceSection[models.Employment]{
		items:    func(rec *models.PersonRecord) *[]models.Employment { return &rec.EmploymentHistory },
		template: models.NewEmployment,
	},
	SectionReferences: sliceSection[models.Reference]{
		items:    func(rec *models.PersonRecord) *[]models.Reference { return &rec.References },
		template: models.NewReference,
	},
	ListWitnesses: sliceSection[string]{
		items:    func(rec *models.PersonRecord) *[]string { return &rec.EPFAndGratuity.Witnesses },
		template: models.NewWitness,
	},
}

// normalizeLists keeps every list of rec non-nil so the record always
// serializes with the same shape.
func normalizeLists(rec *models.PersonRecord) {
	for _, l := range lists {
		l.normalize(rec)
	}
}

func listFor(key string) (listSection, error) {
	l, ok := lists[key]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSection, "%q is not a list section", key)
	}
	return l, nil
}

var personalType = reflect.TypeOf(models.PersonalDetails{})

// IsPersonalField reports whether name is one of the flat identity fields.
func IsPersonalField(name string) bool {
	_, ok := fieldIndex(personalType, name)
	return ok
}

// mergePersonal overwrites the named root fields and leaves everything else,
// nested sections included, as it was. Either every key applies or none does.
func mergePersonal(rec models.PersonRecord, payload any) (models.PersonRecord, error) {
	switch p := payload.(type) {
	case models.PersonalDetails:
		rec.PersonalDetails = p
		return rec, nil
	case map[string]string:
		fields := make(map[string]any, len(p))
		for k, v := range p {
			fields[k] = v
		}
		return mergePersonal(rec, fields)
	case map[string]any:
		details := rec.PersonalDetails
		for _, name := range sortedKeys(p) {
			if !IsPersonalField(name) {
				return rec, errors.Wrapf(ErrUnknownField, "%q is not a personal field", name)
			}
			var err error
			if details, err = Patch(details, name, p[name]); err != nil {
				return rec, err
			}
		}
		rec.PersonalDetails = details
		return rec, nil
	}
	return rec, errors.Wrapf(ErrFieldType, "personal update must be a field map, got %T", payload)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
