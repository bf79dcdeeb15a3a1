// Package state holds the wizard's record store and the pure patch and list
// operations it is built from. Fields are addressed by their JSON names so the
// same operations serve typed callers and decoded request bodies.
package state

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"formwizard-go/models"
)

var (
	ErrUnknownField    = errors.New("unknown field")
	ErrFieldType       = errors.New("value does not match field type")
	ErrNotStruct       = errors.New("patch target is not a struct")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownSection  = errors.New("unknown section")
)

var periodType = reflect.TypeOf(models.Period{})

// Patch returns a copy of obj with field set to value. obj is never modified.
func Patch[T any](obj T, field string, value any) (T, error) {
	return patchPath(obj, []string{field}, value)
}

// PatchNested copies the nested object under nested, sets field on it and
// returns a copy of obj holding the patched nested object.
func PatchNested[T any](obj T, nested, field string, value any) (T, error) {
	return patchPath(obj, []string{nested, field}, value)
}

// PatchPeriod sets one of start, end or raw and keeps the other two.
func PatchPeriod(p models.Period, field, value string) (models.Period, error) {
	return Patch(p, field, value)
}

// MergePeriod applies every key in fields to p, keeping the keys it does not name.
func MergePeriod(p models.Period, fields map[string]string) (models.Period, error) {
	out := p
	if err := decode(fields, &out); err != nil {
		return p, err
	}
	return out, nil
}

func patchPath[T any](obj T, path []string, value any) (T, error) {
	out := obj
	if err := setPath(reflect.ValueOf(&out).Elem(), path, value); err != nil {
		return obj, err
	}
	return out, nil
}

// setPath walks value-typed struct fields of v, which must be an addressable
// copy owned by the caller, and assigns value at the end of path.
func setPath(v reflect.Value, path []string, value any) error {
	for i, name := range path {
		if v.Kind() != reflect.Struct {
			return errors.Wrapf(ErrNotStruct, "%s at %q", v.Type(), strings.Join(path[:i], "."))
		}
		idx, ok := fieldIndex(v.Type(), name)
		if !ok {
			return errors.Wrapf(ErrUnknownField, "%s has no field %q", v.Type(), name)
		}
		v = v.FieldByIndex(idx)
	}
	return assign(v, value)
}

func fieldIndex(t reflect.Type, name string) ([]int, bool) {
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		if jsonName(f) == name {
			return f.Index, true
		}
	}
	return nil, false
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// assign stores value into fv. Values of the field's own type are used as is
// (slices are copied); anything else is decoded by JSON field names. A map
// assigned to a Period merges into the current period.
func assign(fv reflect.Value, value any) error {
	if value == nil {
		return errors.Wrapf(ErrFieldType, "nil is not a %s", fv.Type())
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(fv.Type()) {
		if rv.Kind() == reflect.Slice {
			rv = reflect.AppendSlice(reflect.MakeSlice(rv.Type(), 0, rv.Len()), rv)
		}
		fv.Set(rv)
		return nil
	}

	target := reflect.New(fv.Type())
	if fv.Type() == periodType {
		target.Elem().Set(fv)
	}
	if err := decode(value, target.Interface()); err != nil {
		return err
	}
	fv.Set(target.Elem())
	return nil
}

func decode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Squash:      true,
		Result:      output,
	})
	if err != nil {
		return errors.Wrap(err, "building decoder")
	}
	if err := dec.Decode(input); err != nil {
		if strings.Contains(err.Error(), "invalid keys") {
			return errors.Wrap(ErrUnknownField, err.Error())
		}
		return errors.Wrap(ErrFieldType, err.Error())
	}
	return nil
}
