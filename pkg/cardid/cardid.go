// Package cardid converts MIFARE card identifiers between the hexadecimal form
// printed by card readers and the fixed-width decimal form stored by panels.
//
// Panels store card numbers as 10-digit zero-padded decimal strings. Input
// lists and readers use hexadecimal. Sets of cards must be compared in one
// encoding only, so every boundary normalizes to canonical decimal with
// Canonical, HexToDecimal or the Normalize helpers.
package cardid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/cardsync/pkg/constants"
	"github.com/agentstation/cardsync/pkg/errors"
)

// HexToDecimal converts a case-insensitive hexadecimal identifier to the
// panel's zero-padded decimal form.
func HexToDecimal(hex string) (string, error) {
	value, err := parseHex(hex)
	if err != nil {
		return "", err
	}
	return format(value), nil
}

// DecimalToHex converts a panel card number back to lower-case hexadecimal
// without padding.
func DecimalToHex(decimal string) (string, error) {
	value, err := parseDecimal(decimal)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(value, 16), nil
}

// Canonical re-pads a decimal card number to the panel's fixed width.
func Canonical(decimal string) (string, error) {
	value, err := parseDecimal(decimal)
	if err != nil {
		return "", err
	}
	return format(value), nil
}

// NormalizeHex converts hexadecimal identifiers to canonical decimal, dropping
// blanks and duplicates while keeping first-seen order.
func NormalizeHex(hexes []string) ([]string, error) {
	return normalize(hexes, HexToDecimal)
}

// NormalizeDecimal canonicalizes decimal card numbers, dropping blanks and
// duplicates while keeping first-seen order.
func NormalizeDecimal(decimals []string) ([]string, error) {
	return normalize(decimals, Canonical)
}

// ToHex converts canonical decimal card numbers to hexadecimal, in order.
func ToHex(decimals []string) ([]string, error) {
	out := make([]string, 0, len(decimals))
	for _, d := range decimals {
		h, err := DecimalToHex(d)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func normalize(ids []string, convert func(string) (string, error)) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		dec, err := convert(id)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[dec]; dup {
			continue
		}
		seen[dec] = struct{}{}
		out = append(out, dec)
	}
	return out, nil
}

func parseHex(hex string) (uint64, error) {
	h := strings.TrimSpace(hex)
	h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
	if h == "" {
		return 0, errors.NewValidationError("card", hex, "empty hexadecimal identifier")
	}
	value, err := strconv.ParseUint(h, 16, 64)
	if err != nil {
		return 0, errors.NewValidationError("card", hex, "not a hexadecimal number")
	}
	return value, nil
}

func parseDecimal(decimal string) (uint64, error) {
	d := strings.TrimSpace(decimal)
	if d == "" {
		return 0, errors.NewValidationError("card", decimal, "empty card number")
	}
	value, err := strconv.ParseUint(d, 10, 64)
	if err != nil {
		return 0, errors.NewValidationError("card", decimal, "not a decimal card number")
	}
	return value, nil
}

func format(value uint64) string {
	return fmt.Sprintf("%0*d", constants.CardNumberWidth, value)
}
