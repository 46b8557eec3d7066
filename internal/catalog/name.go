package catalog

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/freeboard/internal/grid"
)

// Name is a parsed raster id.
type Name struct {
	ID           string
	Jurisdiction string
	Level        grid.Level
	// StudyType is the token after the level, e.g. "RIV" or "CST". Empty
	// when the id ends at the level token.
	StudyType string
}

// ParseName parses a raster id. ok is false when the id does not carry a
// recognised level token in fourth position.
func ParseName(id string) (Name, bool) {
	id = norm.NFC.String(id)
	tokens := strings.Split(id, "_")
	if len(tokens) < 4 || tokens[0] == "" || tokens[1] == "" {
		return Name{}, false
	}
	level, ok := grid.ParseToken(tokens[3])
	if !ok {
		return Name{}, false
	}
	n := Name{
		ID:           id,
		Jurisdiction: tokens[0] + "_" + tokens[1],
		Level:        level,
	}
	if len(tokens) > 4 {
		n.StudyType = strings.ToUpper(tokens[4])
	}
	return n, true
}

// SameJurisdiction compares jurisdiction codes case-insensitively after
// NFC normalisation.
func SameJurisdiction(a, b string) bool {
	return strings.EqualFold(norm.NFC.String(a), norm.NFC.String(b))
}
