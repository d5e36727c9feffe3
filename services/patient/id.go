package patient

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidID = errors.New("invalid patient id")

var idPattern = regexp.MustCompile(`^[Pp](\d+)$`)

// ParseID accepts either a formatted id like "P0042" (case-insensitive)
// or a bare integer string, and returns the numeric id.
func ParseID(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidID
	}

	if m := idPattern.FindStringSubmatch(raw); m != nil {
		n, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil || n == 0 {
			return 0, ErrInvalidID
		}
		return uint(n), nil
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidID
	}
	return uint(n), nil
}

// FormatID renders the display form, "P" plus the id zero-padded to at
// least four digits.
func FormatID(id uint) string {
	return fmt.Sprintf("P%04d", id)
}
