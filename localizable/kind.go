// Package localizable flattens catalog entries into individually
// translatable strings and folds them back.
//
// A Session holds every string of a catalog in one slice. Callers address
// strings by index and mutate them through the state transition methods on
// String; Commit folds the session back into the catalog before writing.
package localizable

import (
	"fmt"

	"github.com/minios-linux/xckit/xcstrings"
)

// KindType discriminates the shape a string came from.
type KindType int

const (
	// KindStandalone is a plain stringUnit.
	KindStandalone KindType = iota
	// KindReplacement is one variant of a format-argument substitution.
	KindReplacement
	// KindVariation is a device or plural variant without substitution.
	KindVariation
)

// VariantType tells which category set a Variant belongs to.
type VariantType int

const (
	VariantNone VariantType = iota
	VariantDevice
	VariantPlural
)

// Variant is a device or plural category.
type Variant struct {
	Type     VariantType
	Category string
}

// DeviceVariant returns the variant for a device category.
func DeviceVariant(c xcstrings.DeviceCategory) Variant {
	return Variant{Type: VariantDevice, Category: string(c)}
}

// PluralVariant returns the variant for a plural category.
func PluralVariant(c xcstrings.PluralCategory) Variant {
	return Variant{Type: VariantPlural, Category: string(c)}
}

func (v Variant) String() string {
	switch v.Type {
	case VariantDevice:
		return "device." + v.Category
	case VariantPlural:
		return "plural." + v.Category
	default:
		return "none"
	}
}

// Kind identifies a string within the localization of one language.
// Kinds are comparable with ==.
type Kind struct {
	Type KindType
	// ArgID is the substitution key, e.g. "arg1" or "count".
	ArgID string
	// ArgNum is the positional argument number of the substitution.
	ArgNum int
	// FormatSpecifier is the printf verb of the substitution, e.g. "lld".
	FormatSpecifier string
	Variant         Variant
}

// Standalone is the kind of a plain stringUnit.
var Standalone = Kind{Type: KindStandalone}

// Replacement returns the kind of one variant of a substitution.
func Replacement(argID string, argNum int, formatSpecifier string, v Variant) Kind {
	return Kind{
		Type:            KindReplacement,
		ArgID:           argID,
		ArgNum:          argNum,
		FormatSpecifier: formatSpecifier,
		Variant:         v,
	}
}

// Variation returns the kind of a bare device or plural variant.
func Variation(v Variant) Kind {
	return Kind{Type: KindVariation, Variant: v}
}

func (k Kind) String() string {
	switch k.Type {
	case KindStandalone:
		return "standalone"
	case KindReplacement:
		return fmt.Sprintf("replacement(%s#%d %%%s, %s)", k.argID(), k.ArgNum, k.FormatSpecifier, k.Variant)
	case KindVariation:
		return fmt.Sprintf("variation(%s)", k.Variant)
	default:
		return fmt.Sprintf("kind(%d)", int(k.Type))
	}
}

// argID returns the substitution key, defaulting to "arg<N>".
func (k Kind) argID() string {
	if k.ArgID != "" {
		return k.ArgID
	}
	return fmt.Sprintf("arg%d", k.ArgNum)
}

// matches reports whether a target string of kind k corresponds to a source
// string of kind src. Substitutions are matched by argument number, so the
// key and format specifier may differ between languages.
func (k Kind) matches(src Kind) bool {
	if k.Type != src.Type || k.Variant != src.Variant {
		return false
	}
	if k.Type == KindReplacement {
		return k.ArgNum == src.ArgNum
	}
	return true
}
