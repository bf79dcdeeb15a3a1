package state

import (
	"reflect"

	"github.com/pkg/errors"
)

// The list operations below never write into the backing array of the list
// they are given. Element identity is positional: after RemoveAt every later
// element moves down one index.

// Append returns a new list with template added at the end. Templates are
// plain values, so the new element shares nothing with template or list.
func Append[T any](list []T, template T) []T {
	out := make([]T, len(list), len(list)+1)
	copy(out, list)
	return append(out, template)
}

func RemoveAt[T any](list []T, index int) ([]T, error) {
	if err := checkIndex(index, len(list)); err != nil {
		return list, err
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), nil
}

// UpdateAt returns a new list whose element at index has field set to value.
// An empty field replaces the element itself, which is how bare-string lists
// such as witnesses are edited.
func UpdateAt[T any](list []T, index int, field string, value any) ([]T, error) {
	if err := checkIndex(index, len(list)); err != nil {
		return list, err
	}

	var (
		elem T
		err  error
	)
	if field == "" {
		elem, err = replacement[T](value)
	} else {
		elem, err = Patch(list[index], field, value)
	}
	if err != nil {
		return list, err
	}
	return replaceAt(list, index, elem), nil
}

// UpdateAtNested is UpdateAt one level deeper, e.g. an entry's employment_period.
func UpdateAtNested[T any](list []T, index int, nested, field string, value any) ([]T, error) {
	if err := checkIndex(index, len(list)); err != nil {
		return list, err
	}
	elem, err := PatchNested(list[index], nested, field, value)
	if err != nil {
		return list, err
	}
	return replaceAt(list, index, elem), nil
}

func replaceAt[T any](list []T, index int, elem T) []T {
	out := make([]T, len(list))
	copy(out, list)
	out[index] = elem
	return out
}

func replacement[T any](value any) (T, error) {
	var elem T
	if err := assign(reflect.ValueOf(&elem).Elem(), value); err != nil {
		return elem, err
	}
	return elem, nil
}

func checkIndex(index, length int) error {
	if index < 0 || index >= length {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d, length %d", index, length)
	}
	return nil
}
