package constants

// MatchLevel records which key combination paired a spreadsheet row with an
// extracted item. Levels are tried strongest-first; "none" means no item had
// a matching non-empty style.
type MatchLevel string

// Stable values (store these exact strings in DB and API payloads).
const (
	MatchStyleSizeColor MatchLevel = "style+size+color"
	MatchStyleSize      MatchLevel = "style+size"
	MatchStyleColor     MatchLevel = "style+color"
	MatchStyle          MatchLevel = "style"
	MatchNone           MatchLevel = "none"
)
