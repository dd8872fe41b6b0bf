package config

// ExpressionFileExt is the extension the CLI looks for when given a directory.
const ExpressionFileExt = ".cx"

// DefaultPrecision is the number of significant digits kept by decimal arithmetic.
const DefaultPrecision = 34

// DefaultConfigFile is looked up in the working directory by the CLI.
const DefaultConfigFile = "colexpr.yaml"

// EnvPrefix prefixes environment overrides (COLEXPR_PRECISION, ...).
const EnvPrefix = "COLEXPR_"

// Built-in type names
const (
	OptionalTypeName = "Optional"
	OptionalNoneTag  = "None"
	OptionalSomeTag  = "Is"
)

// Built-in function names referenced outside the function catalogue.
const (
	AsTypeFuncName   = "as_type"
	FromTextFuncName = "from_text"
	AsUnitFuncName   = "as"
	ToTextFuncName   = "to_text"
)

// Keywords of the expression syntax.
const (
	KeywordEntire = "entire"
	WildcardName  = "_"
)
