package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Document Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryDocument,
		Message:  "Invalid document root",
		Detail:   "A rich-text document must be a single node object or an array of nodes.",
		DocURL:   "https://vango.dev/docs/richtext/errors/E100",
	},
	"E101": {
		Category: CategoryDocument,
		Message:  "Malformed document",
		Detail:   "The document is not valid JSON or a field has the wrong type.",
		DocURL:   "https://vango.dev/docs/richtext/errors/E101",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The richtext configuration has an invalid value.",
		DocURL:   "https://vango.dev/docs/richtext/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Configuration parse error",
		Detail:   "The configuration file could not be decoded. richtext.json must be JSON, richtext.toml must be TOML.",
		DocURL:   "https://vango.dev/docs/richtext/errors/E121",
	},

	// ============================================
	// CLI Errors (E140-E149)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Input not found",
		Detail:   "The input file does not exist or cannot be read.",
		DocURL:   "https://vango.dev/docs/richtext/errors/E140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Configuration not found",
		Detail:   "The configuration file passed with --config does not exist.",
		DocURL:   "https://vango.dev/docs/richtext/errors/E141",
	},

	// ============================================
	// Output Errors (E150-E169)
	// ============================================

	"E150": {
		Category: CategoryRender,
		Message:  "Unsupported output format",
		Detail:   "Supported formats are html, json and binary.",
		DocURL:   "https://vango.dev/docs/richtext/errors/E150",
	},
	"E151": {
		Category: CategoryRender,
		Message:  "Serialisation failed",
		Detail:   "The rendered tree could not be written in the requested format.",
		DocURL:   "https://vango.dev/docs/richtext/errors/E151",
	},
	"E160": {
		Category: CategorySink,
		Message:  "Output sink failed",
		Detail:   "The rendered output could not be stored.",
		DocURL:   "https://vango.dev/docs/richtext/errors/E160",
	},

	// ============================================
	// Input Errors (E170-E179)
	// ============================================

	"E170": {
		Category: CategoryInput,
		Message:  "Unsupported input",
		Detail:   "Supported input formats are json and markdown.",
		DocURL:   "https://vango.dev/docs/richtext/errors/E170",
	},
	"E171": {
		Category: CategoryInput,
		Message:  "Request body too large",
		Detail:   "The request body exceeds server.maxBodyBytes.",
		DocURL:   "https://vango.dev/docs/richtext/errors/E171",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry. It is not safe to
// call concurrently with New.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
