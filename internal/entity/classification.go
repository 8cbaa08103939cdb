package entity

import "github.com/garment-labs/labelaudit/constants"

// ClassifierEvidence lists the patterns that matched per category.
type ClassifierEvidence struct {
	CareLabel []string `json:"care_label"`
	RFID      []string `json:"rfid"`
}

// ClassificationResult is the routing decision for one document.
type ClassificationResult struct {
	Type      constants.DocType  `json:"type"`
	CareScore int                `json:"care_score"`
	RFIDScore int                `json:"rfid_score"`
	Evidence  ClassifierEvidence `json:"evidence"`
}

// DocumentResult is the full extraction output for one document. Exactly one
// of CareLabels/HangTags is populated for a routed document.
type DocumentResult struct {
	DocType    constants.DocType `json:"doc_type"`
	ParentInfo ParentInfo        `json:"parent_info"`
	CareLabels []LabelItem       `json:"care_labels"`
	HangTags   []LabelItem       `json:"hang_tags"`
}
