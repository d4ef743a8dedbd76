// Package cell implements the hierarchical hexagonal cell model.
//
// A Cell is a 64-bit H3 cell index. It encodes a resolution (0 is the
// coarsest, 15 the finest), one of 122 base cells and a path of up to fifteen
// 3-bit digits from the base cell down to the cell:
//
//	bit  63     reserved, always 0
//	bits 59-62  index mode, 1 for cells
//	bits 56-58  reserved, always 0 for cells
//	bits 52-55  resolution
//	bits 45-51  base cell
//	bits 0-44   digits 1..15, three bits each; digits finer than the
//	            resolution are 7
//
// Every cell has seven children except the twelve pentagons, which have six:
// the child on the deleted K axis (digit 1) does not exist. Code walking the
// hierarchy must use ChildCount and ChildDigits instead of assuming a fan-out
// of seven.
package cell

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell is an H3 cell index.
type Cell uint64

const (
	// MaxResolution is the finest resolution of the hierarchy.
	MaxResolution = 15

	// NumBaseCells is the number of resolution 0 cells.
	NumBaseCells = 122

	// MaxChildren is the fan-out of a hexagonal cell.
	MaxChildren = 7
)

const (
	modeCell = 1

	reservedOffset = 63
	modeOffset     = 59
	modeMask       = uint64(0xF) << modeOffset
	extraOffset    = 56
	extraMask      = uint64(0x7) << extraOffset
	resOffset      = 52
	resMask        = uint64(0xF) << resOffset
	baseCellOffset = 45
	baseCellMask   = uint64(0x7F) << baseCellOffset
	digitBits      = 3
	digitMask      = uint64(0x7)
	unusedDigit    = 7
	kAxesDigit     = 1

	// all fifteen digits set to 7
	digitsUnused = uint64(1)<<baseCellOffset - 1
)

var pentagonBaseCells = [NumBaseCells]bool{
	4: true, 14: true, 24: true, 38: true, 49: true, 58: true,
	63: true, 72: true, 83: true, 97: true, 107: true, 117: true,
}

var (
	hexagonDigits  = []uint8{0, 1, 2, 3, 4, 5, 6}
	pentagonDigits = []uint8{0, 2, 3, 4, 5, 6}
)

// FromUint64 validates v and returns it as a Cell.
func FromUint64(v uint64) (Cell, error) {
	c := Cell(v)
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return c, nil
}

// FromBaseCell returns the resolution 0 cell of the given base cell.
func FromBaseCell(baseCell int) (Cell, error) {
	if baseCell < 0 || baseCell >= NumBaseCells {
		return 0, &InvalidCellError{Value: uint64(baseCell), Reason: "base cell out of range"}
	}
	return baseCellIndex(baseCell), nil
}

// FromDigits builds the cell reached from baseCell by following digits. The
// resolution of the result is len(digits).
func FromDigits(baseCell int, digits ...uint8) (Cell, error) {
	if len(digits) > MaxResolution {
		return 0, fmt.Errorf("%w: %d", ErrInvalidResolution, len(digits))
	}
	c, err := FromBaseCell(baseCell)
	if err != nil {
		return 0, err
	}
	for _, d := range digits {
		c = c.Child(d)
	}
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return c, nil
}

func baseCellIndex(baseCell int) Cell {
	return Cell(uint64(modeCell)<<modeOffset | uint64(baseCell)<<baseCellOffset | digitsUnused)
}

// Parse parses a cell from its textual form. Accepted forms are the canonical
// lower-case hexadecimal string ("85283473fffffff"), hexadecimal with a "0x"
// prefix, binary with a "0b" prefix and plain decimal.
func Parse(s string) (Cell, error) {
	s = strings.TrimSpace(s)
	if len(s) > 2 {
		switch strings.ToLower(s[:2]) {
		case "0x":
			return parseBase(s, s[2:], 16)
		case "0b":
			return parseBase(s, s[2:], 2)
		}
	}
	c, hexErr := parseBase(s, s, 16)
	if hexErr == nil {
		return c, nil
	}
	if c, err := parseBase(s, s, 10); err == nil {
		return c, nil
	}
	return 0, hexErr
}

func parseBase(orig, digits string, base int) (Cell, error) {
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, &InvalidCellError{Input: orig, Reason: "not a number", cause: err}
	}
	c, err := FromUint64(v)
	if err != nil {
		if ice, ok := err.(*InvalidCellError); ok {
			ice.Input = orig
		}
		return 0, err
	}
	return c, nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// static tables.
func MustParse(s string) Cell {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the canonical hexadecimal form of the cell.
func (c Cell) String() string {
	return strconv.FormatUint(uint64(c), 16)
}

// MarshalText implements encoding.TextMarshaler.
func (c Cell) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cell) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Resolution returns the resolution of the cell.
func (c Cell) Resolution() int {
	return int((uint64(c) & resMask) >> resOffset)
}

// BaseCell returns the base cell number of the cell.
func (c Cell) BaseCell() int {
	return int((uint64(c) & baseCellMask) >> baseCellOffset)
}

// Digit returns the digit at resolution r (1..15).
func (c Cell) Digit(r int) uint8 {
	return uint8((uint64(c) >> digitOffset(r)) & digitMask)
}

func digitOffset(r int) uint {
	return uint((MaxResolution - r) * digitBits)
}

func (c Cell) withDigit(r int, d uint8) Cell {
	off := digitOffset(r)
	return Cell(uint64(c)&^(digitMask<<off) | uint64(d)<<off)
}

func (c Cell) withResolution(res int) Cell {
	return Cell(uint64(c)&^resMask | uint64(res)<<resOffset)
}

// IsPentagon reports whether the cell is one of the twelve pentagons of its
// resolution.
func (c Cell) IsPentagon() bool {
	if !pentagonBaseCells[c.BaseCell()%NumBaseCells] {
		return false
	}
	for r := 1; r <= c.Resolution(); r++ {
		if c.Digit(r) != 0 {
			return false
		}
	}
	return true
}

// IsValid reports whether c is a well-formed cell index.
func (c Cell) IsValid() bool {
	return c.Validate() == nil
}

// Validate returns an *InvalidCellError describing why c is not a cell.
func (c Cell) Validate() error {
	v := uint64(c)
	invalid := func(reason string) error {
		return &InvalidCellError{Value: v, Reason: reason}
	}
	if v>>reservedOffset != 0 {
		return invalid("reserved bit set")
	}
	if (v&modeMask)>>modeOffset != modeCell {
		return invalid("not in cell mode")
	}
	if v&extraMask != 0 {
		return invalid("reserved bits set")
	}
	base := c.BaseCell()
	if base >= NumBaseCells {
		return invalid("base cell out of range")
	}
	res := c.Resolution()
	pentagon := pentagonBaseCells[base]
	leading := true
	for r := 1; r <= res; r++ {
		d := c.Digit(r)
		if d == unusedDigit {
			return invalid("unused digit within resolution")
		}
		if leading && d != 0 {
			if pentagon && d == kAxesDigit {
				return invalid("deleted pentagon subsequence")
			}
			leading = false
		}
	}
	for r := res + 1; r <= MaxResolution; r++ {
		if c.Digit(r) != unusedDigit {
			return invalid("digit beyond resolution")
		}
	}
	return nil
}

// Parent returns the parent of the cell. It returns false for resolution 0
// cells.
func (c Cell) Parent() (Cell, bool) {
	res := c.Resolution()
	if res == 0 {
		return 0, false
	}
	return c.ParentAt(res - 1), true
}

// ParentAt returns the ancestor of the cell at resolution res. ParentAt of the
// cell's own resolution returns the cell itself. It panics if res is finer
// than the cell's resolution or negative.
func (c Cell) ParentAt(res int) Cell {
	own := c.Resolution()
	if res < 0 || res > own {
		panic(fmt.Sprintf("cell: ParentAt(%d) of resolution %d cell %s", res, own, c))
	}
	p := c.withResolution(res)
	for r := res + 1; r <= own; r++ {
		p = p.withDigit(r, unusedDigit)
	}
	return p
}

// ChildCount returns the number of children of the cell: 6 for pentagons, 7
// otherwise, and 0 at the finest resolution.
func (c Cell) ChildCount() int {
	if c.Resolution() == MaxResolution {
		return 0
	}
	if c.IsPentagon() {
		return len(pentagonDigits)
	}
	return len(hexagonDigits)
}

// ChildDigits returns the digits of the cell's existing children in
// ascending order. The returned slice is shared and must not be modified.
func (c Cell) ChildDigits() []uint8 {
	if c.Resolution() == MaxResolution {
		return nil
	}
	if c.IsPentagon() {
		return pentagonDigits
	}
	return hexagonDigits
}

// Child returns the child of the cell in direction d. The result is only
// meaningful for digits returned by ChildDigits.
func (c Cell) Child(d uint8) Cell {
	res := c.Resolution() + 1
	return c.withResolution(res).withDigit(res, d)
}

// Children returns the children of the cell in ascending order.
func (c Cell) Children() []Cell {
	digits := c.ChildDigits()
	children := make([]Cell, 0, len(digits))
	for _, d := range digits {
		children = append(children, c.Child(d))
	}
	return children
}

// Contains reports whether c is o or an ancestor of o.
func (c Cell) Contains(o Cell) bool {
	res := c.Resolution()
	if res > o.Resolution() {
		return false
	}
	return o.ParentAt(res) == c
}

// Related reports whether a and b are equal or one is an ancestor of the
// other.
func Related(a, b Cell) bool {
	if a == b {
		return true
	}
	if a.Resolution() <= b.Resolution() {
		return a.Contains(b)
	}
	return b.Contains(a)
}

// Compare orders cells canonically: by resolution, then by index.
func Compare(a, b Cell) int {
	ra, rb := a.Resolution(), b.Resolution()
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Less reports whether a sorts before b in canonical order.
func Less(a, b Cell) bool {
	return Compare(a, b) < 0
}
