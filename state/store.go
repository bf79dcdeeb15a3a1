package state

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"formwizard-go/models"
)

type snapshot struct {
	record  models.PersonRecord
	version uint64
}

// Store is the single source of truth for one wizard session's record.
//
// Writers are serialized and publish a freshly built record with one pointer
// swap; readers load the current pointer without locking. A record returned
// by Snapshot is never modified afterwards, so a preview render or a
// submission can keep using it while edits continue.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

func NewStore() *Store {
	return NewStoreWith(models.DefaultRecord())
}

// NewStoreWith starts a store from rec. The store keeps its own copies of
// rec's lists.
func NewStoreWith(rec models.PersonRecord) *Store {
	rec.PreviousAddresses = append([]models.PreviousAddress{}, rec.PreviousAddresses...)
	rec.EmploymentHistory = append([]models.Employment{}, rec.EmploymentHistory...)
	rec.References = append([]models.Reference{}, rec.References...)
	rec.EPFAndGratuity.Witnesses = append([]string{}, rec.EPFAndGratuity.Witnesses...)

	s := &Store{}
	s.current.Store(&snapshot{record: rec})
	return s
}

// Snapshot returns the current record. Callers must treat its lists as read-only.
func (s *Store) Snapshot() models.PersonRecord {
	return s.current.Load().record
}

// Current returns the record together with its version, read atomically.
func (s *Store) Current() (models.PersonRecord, uint64) {
	snap := s.current.Load()
	return snap.record, snap.version
}

// Version counts successful updates since the store was created.
func (s *Store) Version() uint64 {
	return s.current.Load().version
}

// update runs fn on a private copy of the current record and publishes the
// result with every list non-nil. fn must replace lists rather than write
// into them. On error the current record stays as it was.
func (s *Store) update(fn func(rec models.PersonRecord) (models.PersonRecord, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	next, err := fn(cur.record)
	if err != nil {
		return err
	}
	normalizeLists(&next)
	s.current.Store(&snapshot{record: next, version: cur.version + 1})
	return nil
}

// ApplyUpdate is the store's merge rule. For SectionPersonal, payload is a
// map of root field names to values merged over the current root fields. For
// any other section, payload replaces the section wholesale; callers build
// the full replacement themselves and hand ownership of it to the store.
// Values are not validated.
func (s *Store) ApplyUpdate(section string, payload any) error {
	return s.update(func(rec models.PersonRecord) (models.PersonRecord, error) {
		if section == SectionPersonal {
			return mergePersonal(rec, payload)
		}
		if !IsSection(section) {
			return rec, errors.Wrapf(ErrUnknownSection, "%q", section)
		}
		return Patch(rec, section, payload)
	})
}

// PatchField sets one field of a section. For SectionPersonal the field is a
// root identity field.
func (s *Store) PatchField(section, field string, value any) error {
	if section == SectionPersonal {
		return s.ApplyUpdate(SectionPersonal, map[string]any{field: value})
	}
	if err := checkObjectSection(section); err != nil {
		return err
	}
	return s.update(func(rec models.PersonRecord) (models.PersonRecord, error) {
		return PatchNested(rec, section, field, value)
	})
}

// PatchNested sets field on the object stored under nested inside section,
// e.g. epf_and_gratuity / nominee / name or gaps / period / raw.
func (s *Store) PatchNested(section, nested, field string, value any) error {
	if err := checkObjectSection(section); err != nil {
		return err
	}
	return s.update(func(rec models.PersonRecord) (models.PersonRecord, error) {
		return patchPath(rec, []string{section, nested, field}, value)
	})
}

// Append adds a fresh template element to the list section.
func (s *Store) Append(list string) error {
	l, err := listFor(list)
	if err != nil {
		return err
	}
	return s.update(func(rec models.PersonRecord) (models.PersonRecord, error) {
		l.append(&rec)
		return rec, nil
	})
}

func (s *Store) RemoveAt(list string, index int) error {
	l, err := listFor(list)
	if err != nil {
		return err
	}
	return s.update(func(rec models.PersonRecord) (models.PersonRecord, error) {
		err := l.removeAt(&rec, index)
		return rec, err
	})
}

func (s *Store) UpdateAt(list string, index int, field string, value any) error {
	l, err := listFor(list)
	if err != nil {
		return err
	}
	return s.update(func(rec models.PersonRecord) (models.PersonRecord, error) {
		err := l.updateAt(&rec, index, field, value)
		return rec, err
	})
}

func (s *Store) UpdateAtNested(list string, index int, nested, field string, value any) error {
	l, err := listFor(list)
	if err != nil {
		return err
	}
	return s.update(func(rec models.PersonRecord) (models.PersonRecord, error) {
		err := l.updateAtNested(&rec, index, nested, field, value)
		return rec, err
	})
}

func checkObjectSection(section string) error {
	if !IsSection(section) {
		return errors.Wrapf(ErrUnknownSection, "%q", section)
	}
	if IsList(section) {
		return errors.Wrapf(ErrUnknownSection, "%q is a list section", section)
	}
	return nil
}
