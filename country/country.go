// Package country maps ISO 3166-1 country codes to the numeric values stored
// in country maps.
package country

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/biter777/countries"
)

// ErrUnknownCountry is returned for codes that name no ISO 3166-1 country.
var ErrUnknownCountry = errors.New("unknown country")

// Code is an ISO 3166-1 numeric country code, such as 840 for USA.
type Code uint32

// ParseAlpha3 returns the code of an alpha-3 country code such as "DEU".
// Matching is case-insensitive; names and alpha-2 codes are rejected.
func ParseAlpha3(s string) (Code, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if len(upper) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCountry, s)
	}
	cc := countries.ByName(upper)
	if cc == countries.Unknown || cc.Alpha3() != upper {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCountry, s)
	}
	return Code(cc), nil
}

// FromNumeric returns the code for an ISO 3166-1 numeric value.
func FromNumeric(n uint32) (Code, error) {
	if cc := countries.CountryCode(n); cc == countries.Unknown || !cc.IsValid() {
		return 0, fmt.Errorf("%w: numeric %d", ErrUnknownCountry, n)
	}
	return Code(n), nil
}

// Alpha3 returns the alpha-3 form of the code.
func (c Code) Alpha3() string {
	return countries.CountryCode(c).Alpha3()
}

// Name returns the English short name of the country.
func (c Code) Name() string {
	return countries.CountryCode(c).String()
}

// String returns the alpha-3 form of the code.
func (c Code) String() string { return c.Alpha3() }

// Codec stores a Code as 4 little-endian bytes. It is the value codec of
// country maps.
type Codec struct{}

// Size returns the encoded width.
func (Codec) Size() int { return 4 }

// Put encodes c into b.
func (Codec) Put(b []byte, c Code) { binary.LittleEndian.PutUint32(b, uint32(c)) }

// Get decodes a code from b and checks that it names a country.
func (Codec) Get(b []byte) (Code, error) {
	return FromNumeric(binary.LittleEndian.Uint32(b))
}
