package constants

// DocType is the canonical document classification for a label print sheet.
type DocType string

// Stable values (store these exact strings in DB and API payloads).
const (
	DocTypeCareLabel DocType = "care_label" // sewn-in care/composition labels
	DocTypeHangTag   DocType = "rfid"       // RFID hang tags
	DocTypeUnknown   DocType = "unknown"    // neither pattern set matched
)
