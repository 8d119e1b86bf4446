package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-party/internal/errors"
)

const (
	// MinFaces is the smallest die that can be rolled
	MinFaces = 2
	// MaxFaces caps die size so a typo cannot allocate absurd ranges
	MaxFaces = 1000
	// MaxCount caps the number of dice in one notation
	MaxCount = 100
	// MaxModifier caps the flat modifier in either direction so totals
	// cannot overflow
	MaxModifier = 1000
)

// notationPattern matches "[count]d<faces>[+|-modifier]" after normalization
var notationPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Notation is a parsed dice expression
type Notation struct {
	Count    int
	Faces    int
	Modifier int
}

// String renders the notation in canonical form, e.g. "1d20+5"
func (n Notation) String() string {
	switch {
	case n.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", n.Count, n.Faces, n.Modifier)
	case n.Modifier < 0:
		return fmt.Sprintf("%dd%d%d", n.Count, n.Faces, n.Modifier)
	default:
		return fmt.Sprintf("%dd%d", n.Count, n.Faces)
	}
}

// ParseNotation parses "[count]d<faces>[+|-modifier]". Case and whitespace
// are ignored and count defaults to 1.
func ParseNotation(raw string) (Notation, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	if normalized == "" {
		return Notation{}, errors.InvalidNotation("dice notation is required")
	}

	matches := notationPattern.FindStringSubmatch(normalized)
	if matches == nil {
		return Notation{}, errors.InvalidNotationf("invalid dice notation %q (expected [count]d<faces>[+|-modifier])", raw)
	}

	n := Notation{Count: 1}

	if matches[1] != "" {
		count, err := strconv.Atoi(matches[1])
		if err != nil {
			return Notation{}, errors.InvalidNotationf("invalid dice count in %q", raw)
		}
		n.Count = count
	}

	faces, err := strconv.Atoi(matches[2])
	if err != nil {
		return Notation{}, errors.InvalidNotationf("invalid die size in %q", raw)
	}
	n.Faces = faces

	if matches[3] != "" {
		modifier, err := strconv.Atoi(matches[3])
		if err != nil {
			return Notation{}, errors.InvalidNotationf("invalid modifier in %q", raw)
		}
		n.Modifier = modifier
	}

	if err := n.validate(); err != nil {
		return Notation{}, errors.Wrapf(err, "invalid dice notation %q", raw)
	}

	return n, nil
}

// validate checks the notation is within the rollable bounds
func (n Notation) validate() error {
	if n.Count < 1 || n.Count > MaxCount {
		return errors.InvalidNotationf("dice count must be between 1 and %d, got %d", MaxCount, n.Count)
	}
	if n.Faces < MinFaces || n.Faces > MaxFaces {
		return errors.InvalidNotationf("die faces must be between %d and %d, got %d", MinFaces, MaxFaces, n.Faces)
	}
	if n.Modifier < -MaxModifier || n.Modifier > MaxModifier {
		return errors.InvalidNotationf("modifier must be between -%d and %d, got %d", MaxModifier, MaxModifier, n.Modifier)
	}
	return nil
}
