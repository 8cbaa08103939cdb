package constants

// RunKind distinguishes stored pipeline runs.
type RunKind string

// Stable values (store these exact strings in DB).
const (
	RunKindExtraction RunKind = "extraction" // /extract or batch extraction output
	RunKindValidation RunKind = "validation" // reconciliation against a spreadsheet
)
