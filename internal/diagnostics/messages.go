package diagnostics

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys. Each key is also the English format.
const (
	MsgMismatch        = "expected %s but found %s"
	MsgMismatchDetail  = "expected %s but found %s (%s)"
	MsgAmbiguous       = "ambiguous type %s; add a type annotation with as_type"
	MsgUnknownColumn   = "unknown column %s"
	MsgUnknownFunction = "unknown function %s"
	MsgUnknownName     = "unknown name %s"
	MsgUnknownType     = "unknown type %s"
	MsgUnknownTag      = "type %s has no tag %s"
	MsgUnknownField    = "%s has no field %s"
	MsgNoOverload      = "no overload of %s accepts (%s):\n%s"
	MsgArity           = "%s expects %d arguments but got %d"
	MsgUnit            = "unit error: %s"
	MsgCannotConvert   = "cannot convert %s to %s"
	MsgInvalid         = "%s"
	MsgNoMatch         = "no clause matches %s"
	MsgEmptyList       = "%s of an empty list"
	MsgIndex           = "index %s is out of range for a list of %d elements"
	MsgArithmetic      = "arithmetic error: %s"
	MsgNotReady        = "column %s is not ready"
	MsgParse           = "cannot read %q as %s"
	MsgAmbiguousParse  = "%q is ambiguous as %s: it reads as both %s and %s"
	MsgSyntax          = "%s"
	MsgMixedChain      = "a comparison chain cannot mix < and >"
	MsgNotSingle       = "expected exactly one element but found %d"
	MsgMismatchedBinds = "alternatives of one clause must bind the same names (%s vs %s)"
)

var translations = map[language.Tag]map[string]string{
	language.German: {
		MsgMismatch:        "%s erwartet, aber %s gefunden",
		MsgMismatchDetail:  "%s erwartet, aber %s gefunden (%s)",
		MsgAmbiguous:       "mehrdeutiger Typ %s; mit as_type festlegen",
		MsgUnknownColumn:   "unbekannte Spalte %s",
		MsgUnknownFunction: "unbekannte Funktion %s",
		MsgUnknownName:     "unbekannter Name %s",
		MsgUnknownType:     "unbekannter Typ %s",
		MsgUnknownTag:      "Typ %s hat kein Tag %s",
		MsgUnknownField:    "%s hat kein Feld %s",
		MsgNoOverload:      "keine Variante von %s akzeptiert (%s):\n%s",
		MsgArity:           "%s erwartet %d Argumente, erhielt aber %d",
		MsgUnit:            "Einheitenfehler: %s",
		MsgCannotConvert:   "%s kann nicht in %s umgerechnet werden",
		MsgNoMatch:         "kein Fall passt auf %s",
		MsgEmptyList:       "%s einer leeren Liste",
		MsgIndex:           "Index %s liegt außerhalb einer Liste mit %d Elementen",
		MsgArithmetic:      "Rechenfehler: %s",
		MsgNotReady:        "Spalte %s ist noch nicht bereit",
		MsgParse:           "%q kann nicht als %s gelesen werden",
		MsgAmbiguousParse:  "%q ist als %s mehrdeutig: sowohl %s als auch %s",
		MsgMixedChain:      "eine Vergleichskette darf < und > nicht mischen",
		MsgNotSingle:       "genau ein Element erwartet, aber %d gefunden",
		MsgMismatchedBinds: "Alternativen eines Falls müssen dieselben Namen binden (%s gegen %s)",
	},
}

var msgCatalog = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, key := range []string{
		MsgMismatch, MsgMismatchDetail, MsgAmbiguous, MsgUnknownColumn, MsgUnknownFunction,
		MsgUnknownName, MsgUnknownType, MsgUnknownTag, MsgUnknownField, MsgNoOverload,
		MsgArity, MsgUnit, MsgCannotConvert, MsgInvalid, MsgNoMatch, MsgEmptyList, MsgIndex,
		MsgArithmetic, MsgNotReady, MsgParse, MsgAmbiguousParse, MsgSyntax, MsgMixedChain,
		MsgNotSingle, MsgMismatchedBinds,
	} {
		if err := b.SetString(language.English, key, key); err != nil {
			panic(err)
		}
	}
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Languages lists the languages messages are available in.
func Languages() []language.Tag {
	tags := []language.Tag{language.English}
	for tag := range translations {
		tags = append(tags, tag)
	}
	return tags
}
