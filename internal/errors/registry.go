package errors

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
	// Runtime Errors (E001-E099)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Signal node missing",
		Detail:   "A Signal or Derived handle was read after its node was removed from the store, usually because the owning entity was destroyed. Use TryGet if handles can legitimately outlive their owner.",
		DocURL:   "https://weft.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Stored value type mismatch",
		Detail:   "The value stored for a node does not match the type requested by the handle. A node's stored type never changes for its lifetime; this indicates a handle was constructed against the wrong id.",
		DocURL:   "https://weft.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Write to a derived node",
		Detail:   "Store.Set was called on a node that has a registered compute function. Derived values are solely a function of their dependencies and must never be written directly.",
		DocURL:   "https://weft.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Cyclic selector dependency",
		Detail:   "A selector transitively read its own value during its computation. Break the cycle by reading through an intermediate atom or restructuring the derivation.",
		DocURL:   "https://weft.dev/docs/errors/E004",
	},

	// ============================================
	// Config Errors (E100-E199)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Invalid weft.json",
		Detail:   "The configuration file could not be parsed.",
		DocURL:   "https://weft.dev/docs/errors/E100",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid inspector address",
		Detail:   "The inspector port must be between 1 and 65535.",
		DocURL:   "https://weft.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Snapshot bucket not configured",
		Detail:   "Snapshot archiving requires snapshot.bucket to be set in weft.json.",
		DocURL:   "https://weft.dev/docs/errors/E102",
	},

	// ============================================
	// Snapshot Errors (E200-E299)
	// ============================================

	"E200": {
		Category: CategorySnapshot,
		Message:  "Snapshot version unsupported",
		Detail:   "The snapshot was produced by an incompatible serialization version.",
		DocURL:   "https://weft.dev/docs/errors/E200",
	},
	"E201": {
		Category: CategorySnapshot,
		Message:  "Snapshot upload failed",
		Detail:   "The snapshot could not be written to the configured S3 bucket.",
		DocURL:   "https://weft.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategorySnapshot,
		Message:  "Snapshot download failed",
		Detail:   "The archived snapshot could not be read from the configured S3 bucket.",
		DocURL:   "https://weft.dev/docs/errors/E202",
	},
}
