package graph

import (
	"fmt"
	"reflect"
	"slices"
)

// stateFields lists the exported fields of S, dereferencing one pointer level.
func stateFields[S any]() ([]string, error) {
	t := reflect.TypeFor[S]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("write contracts need a struct state, got %s", t)
	}
	fields := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		if f := t.Field(i); f.IsExported() {
			fields = append(fields, f.Name)
		}
	}
	return fields, nil
}

// changedFields reports the exported fields that differ between before and
// after and are not listed in allowed.
func changedFields[S any](before, after S, allowed []string) []string {
	bv := reflect.ValueOf(&before).Elem()
	av := reflect.ValueOf(&after).Elem()
	if bv.Kind() == reflect.Pointer {
		if bv.IsNil() || av.IsNil() {
			if bv.IsNil() != av.IsNil() {
				return []string{"*"}
			}
			return nil
		}
		bv, av = bv.Elem(), av.Elem()
	}
	if bv.Kind() != reflect.Struct {
		return nil
	}

	var changed []string
	t := bv.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || slices.Contains(allowed, f.Name) {
			continue
		}
		if !reflect.DeepEqual(bv.Field(i).Interface(), av.Field(i).Interface()) {
			changed = append(changed, f.Name)
		}
	}
	return changed
}
