package dto

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/tendril/pkg/domain"
)

// MaxLabelSize bounds labels and method names.
const MaxLabelSize = 256

var (
	ErrLabelTooLarge = errors.New("label exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("text contains invalid UTF-8 sequences")
)

// Sanitize checks every label, method name and string literal of def:
// labels and methods must be valid UTF-8 of at most MaxLabelSize bytes,
// string literals must be valid UTF-8. Control characters other than
// newline, tab and carriage return are stripped in place, so they never
// reach logs, files or terminals.
func Sanitize(def *domain.Definition) error {
	if def == nil {
		return nil
	}
	var errs []error
	label := func(where string, s *string) {
		if len(*s) > MaxLabelSize {
			errs = append(errs, fmt.Errorf("%s: %w: size=%d limit=%d", where, ErrLabelTooLarge, len(*s), MaxLabelSize))
			return
		}
		if err := sanitizeText(s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		}
	}
	literal := func(where string, v *any) {
		s, ok := (*v).(string)
		if !ok {
			return
		}
		if err := sanitizeText(&s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
			return
		}
		*v = s
	}

	for kind, defs := range def.Components {
		for i := range defs {
			where := fmt.Sprintf("%s[%d]", kind, i)
			label(where, &defs[i].Label)
			literal(where, &defs[i].Value)
		}
	}
	for i := range def.Events {
		e := &def.Events[i]
		where := fmt.Sprintf("EVENTS[%d]", i)
		label(where, &e.Label)
		for _, checks := range [][]domain.CheckDef{e.Conditions, e.Activate, e.Deactivate} {
			for j := range checks {
				label(where, &checks[j].Label)
				label(where, &checks[j].Method)
				literal(where, &checks[j].Value)
			}
		}
		for j := range e.Effects {
			label(where, &e.Effects[j].Label)
			label(where, &e.Effects[j].Method)
			literal(where, &e.Effects[j].Arg)
		}
	}
	return errors.Join(errs...)
}

func sanitizeText(s *string) error {
	if !utf8.ValidString(*s) {
		return ErrInvalidUTF8
	}

	// Fast path: if no control chars, leave as is.
	clean := true
	for _, r := range *s {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return nil
	}

	var b strings.Builder
	b.Grow(len(*s))
	for _, r := range *s {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	*s = b.String()
	return nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}
