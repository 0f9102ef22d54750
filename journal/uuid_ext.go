package journal

import (
	"reflect"

	"github.com/google/uuid"
	"github.com/tinylib/msgp/msgp"
)

// UUIDExtensionType is the MessagePack extension type for UUID values.
// Types 3, 4 and 5 are taken by msgp for complex64, complex128 and time.Time.
const UUIDExtensionType int8 = 10

// UUIDSize is the size of an encoded UUID.
const UUIDSize = 16

func init() {
	msgp.RegisterExtension(UUIDExtensionType, func() msgp.Extension {
		return new(UUID)
	})
}

// UUID carries 16 byte identifiers through MessagePack as an extension.
type UUID [UUIDSize]byte

var _ msgp.Extension = (*UUID)(nil)

// ExtensionType returns UUIDExtensionType.
func (u *UUID) ExtensionType() int8 { return UUIDExtensionType }

// Len returns 16.
func (u *UUID) Len() int { return UUIDSize }

// MarshalBinaryTo copies the UUID into b.
func (u *UUID) MarshalBinaryTo(b []byte) error {
	copy(b, u[:])
	return nil
}

// UnmarshalBinary copies b into the UUID.
func (u *UUID) UnmarshalBinary(b []byte) error {
	copy(u[:], b)
	return nil
}

// Bytes returns the UUID as a byte slice.
func (u *UUID) Bytes() []byte { return u[:] }

// String returns the canonical hyphenated form.
func (u *UUID) String() string { return uuid.UUID(*u).String() }

var uuidArrayType = reflect.TypeOf([UUIDSize]byte{})

// asUUID reports whether v is a 16 byte array type (uuid.UUID, gocql.UUID,
// [16]byte) or a pointer to one.
func asUUID(v any) (UUID, bool) {
	switch tv := v.(type) {
	case uuid.UUID:
		return UUID(tv), true
	case UUID:
		return tv, true
	case *UUID:
		if tv == nil {
			return UUID{}, false
		}
		return *tv, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return UUID{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Array || !rv.Type().ConvertibleTo(uuidArrayType) {
		return UUID{}, false
	}

	return UUID(rv.Convert(uuidArrayType).Interface().([UUIDSize]byte)), true
}
