package token

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	IDENT  = "IDENT"
	NUMBER = "NUMBER"
	STRING = "STRING"
	// BRACED is the raw text between braces following a number or one of the
	// literal keywords: 5{m/s}, date{2024-01-02}, type{[Text]}.
	BRACED = "BRACED"

	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	CARET    = "^"
	CONCAT   = "++"

	LT     = "<"
	LTE    = "<="
	GT     = ">"
	GTE    = ">="
	EQ     = "="
	NOT_EQ = "<>"
	AND    = "&"
	OR     = "|"

	ARROW     = "->"
	COMMA     = ","
	COLON     = ":"
	SEMICOLON = ";"
	DOT       = "."
	AT        = "@"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACKET = "["
	RBRACKET = "]"
	LBRACE   = "{"
	RBRACE   = "}"

	IF     = "IF"
	THEN   = "THEN"
	ELSE   = "ELSE"
	MATCH  = "MATCH"
	WHEN   = "WHEN"
	DEFINE = "DEFINE"
	IN     = "IN"
	FN     = "FN"
	TRUE   = "TRUE"
	FALSE  = "FALSE"

	DATE          = "DATE"
	TIME          = "TIME"
	DATEYM        = "DATEYM"
	DATETIME      = "DATETIME"
	DATETIMEZONED = "DATETIMEZONED"
	TIMEZONED     = "TIMEZONED"
	TYPE          = "TYPE"
	UNIT          = "UNIT"
)

var keywords = map[string]TokenType{
	"if":            IF,
	"then":          THEN,
	"else":          ELSE,
	"match":         MATCH,
	"when":          WHEN,
	"define":        DEFINE,
	"in":            IN,
	"fn":            FN,
	"true":          TRUE,
	"false":         FALSE,
	"date":          DATE,
	"time":          TIME,
	"dateym":        DATEYM,
	"datetime":      DATETIME,
	"datetimezoned": DATETIMEZONED,
	"timezoned":     TIMEZONED,
	"type":          TYPE,
	"unit":          UNIT,
}

// LookupIdent returns the keyword type of ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether name is reserved.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

// TakesBraces reports whether a brace directly after a token of type t opens
// a BRACED literal body.
func TakesBraces(t TokenType) bool {
	switch t {
	case NUMBER, DATE, TIME, DATEYM, DATETIME, DATETIMEZONED, TIMEZONED, TYPE, UNIT:
		return true
	}
	return false
}
