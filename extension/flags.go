// flags.go names the CLI flags shared between extensions, so flag
// definitions and lookups cannot drift apart.

package extension

const (
	// Boolean flags

	FlagLocal   = "local"   // Use local config scope
	FlagLong    = "long"    // Long format output
	FlagNumber  = "number"  // Number output lines / count
	FlagRaw     = "raw"     // Raw output without rendering
	FlagReverse = "reverse" // Reverse sort order
	FlagApply   = "apply"   // Apply proposed changes

	// String flags

	FlagCatalog  = "catalog"  // Tag catalogue markdown file
	FlagLines    = "lines"    // Line range (e.g., "10:20")
	FlagSort     = "sort"     // Sort field
	FlagProvider = "provider" // LLM provider override
	FlagModel    = "model"    // LLM model override

	// Integer flags

	FlagMaxChars = "max-chars" // Maximum characters of text
)
