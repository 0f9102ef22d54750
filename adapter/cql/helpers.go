package cql

import "reflect"

// NullableDest returns a destination that records null for a driver value
// holder.
//
// Drivers describe a row as one pointer per column (*T). Scanning into *T
// turns null into the zero value of T, so NullableDest wraps it in a fresh
// **T, which the driver sets to nil on null.
func NullableDest(holder any) any {
	t := reflect.TypeOf(holder)
	if t == nil || t.Kind() != reflect.Pointer {
		return holder
	}

	return reflect.New(t).Interface()
}

// DerefNullable unwraps a destination created by NullableDest.
//
// It returns nil for a null column and the column value otherwise.
func DerefNullable(dest any) any {
	v := reflect.ValueOf(dest)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}

	return v.Interface()
}
