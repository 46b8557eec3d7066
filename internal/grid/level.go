package grid

import (
	"fmt"
	"regexp"
	"strings"
)

// Level identifies a grid's position in a freeboard stack.
//
// FVA levels are ordered: FVA0 < FVA1 < FVA2 < FVA3. PCT02 is the
// 0.2%-annual-chance reference grid; it sits outside the ordering and is
// only ever compared against FVA0.
type Level int

const (
	FVA0 Level = iota
	FVA1
	FVA2
	FVA3
	PCT02
)

// FreeboardLevels lists the FVA levels in stack order.
var FreeboardLevels = []Level{FVA0, FVA1, FVA2, FVA3}

var levelNames = []string{"FVA0", "FVA1", "FVA2", "FVA3", "PCT02"}

var levelTokens = []string{"00FVA", "01FVA", "02FVA", "03FVA", "02PCT"}

var pctToken = regexp.MustCompile(`^\d+PCT$`)

// String returns the short level name ("FVA0" ... "PCT02").
func (l Level) String() string {
	if l < FVA0 || l > PCT02 {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Token returns the file-name token that marks this level ("00FVA", ...).
func (l Level) Token() string {
	if l < FVA0 || l > PCT02 {
		return ""
	}
	return levelTokens[l]
}

// IsFreeboard reports whether l is one of the ordered FVA levels.
func (l Level) IsFreeboard() bool {
	return l >= FVA0 && l <= FVA3
}

// Offset returns the number of freeboard increments above FVA0.
// PCT02 has no offset.
func (l Level) Offset() int {
	if !l.IsFreeboard() {
		return 0
	}
	return int(l)
}

// ParseToken maps a file-name token to a Level.
// FVA tokens must match exactly; any "<digits>PCT" token is the 0.2% grid.
func ParseToken(tok string) (Level, bool) {
	tok = strings.ToUpper(strings.TrimSpace(tok))
	for i, t := range levelTokens[:PCT02] {
		if tok == t {
			return Level(i), true
		}
	}
	if pctToken.MatchString(tok) {
		return PCT02, true
	}
	return 0, false
}

// ParseLevel maps a level name ("FVA1", "pct02") to a Level.
func ParseLevel(name string) (Level, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range levelNames {
		if name == n {
			return Level(i), nil
		}
	}
	if l, ok := ParseToken(name); ok {
		return l, nil
	}
	return 0, fmt.Errorf("unknown level %q", name)
}

// PairLabel names a comparison the way QC reports print it,
// higher level first: "01FVA vs 00FVA".
func PairLabel(lower, higher Level) string {
	return higher.Token() + " vs " + lower.Token()
}

// MarshalText encodes l by name so configs and JSON output read "FVA1".
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts a level name or a file-name token.
func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
