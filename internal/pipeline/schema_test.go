package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/garment-labs/labelaudit/internal/entity"
	"github.com/garment-labs/labelaudit/internal/reconcile"
)

func TestCheckExtractPayload(t *testing.T) {
	items := entity.MergeItems([]entity.LabelItem{
		{
			Fields:   entity.Fields{StyleNumber: "AVD100", Size: "M", UPC: "036000291452"},
			Page:     1,
			Position: 1,
		},
	}, entity.ParentInfo{Color: "BLACK SOOT"})
	result := entity.ExtractResult{CareLabels: items, HangTags: []entity.MergedItem{}}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := CheckExtractPayload(data); err != nil {
		t.Fatalf("CheckExtractPayload() error = %v", err)
	}
}

func TestCheckExtractPayloadViolations(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing keys", `{}`},
		{"null list", `{"care_labels": null, "hang_tags": []}`},
		{"unknown key", `{"care_labels": [], "hang_tags": [], "extra": 1}`},
		{"item missing raw", `{"care_labels": [{"style_number": "AV1", "size": "", "color": "", "upc": ""}], "hang_tags": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckExtractPayload([]byte(tt.payload)); err == nil {
				t.Fatal("CheckExtractPayload() error = nil, want violation")
			}
		})
	}
}

func TestCheckValidationPayload(t *testing.T) {
	report := reconcile.Validate(
		[]entity.ExpectedRow{
			{Style: "AV1", Size: "M", Color: "RED", CareUPC: "036000291452"},
			{Style: "AV9"},
		},
		[]entity.MergedItem{{StyleNumber: "AV1", Size: "M", Color: "RED", UPC: "036000291452"}},
		nil,
	)

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := CheckValidationPayload(data); err != nil {
		t.Fatalf("CheckValidationPayload() error = %v", err)
	}
}

func TestCheckValidationPayloadViolations(t *testing.T) {
	valid := `{
		"summary": {"rows": 1, "care_label_matches": 0, "hang_tag_matches": 0},
		"results": [{
			"row": {"style": "AV1", "size": "", "color": "", "care_upc": "", "hang_upc": ""},
			"care_label": {"match": "none", "upc_expected": "", "upc_actual": "", "upc_matches": false, "item": null},
			"hang_tag": {"match": "none", "upc_expected": "", "upc_actual": "", "upc_matches": false, "item": null}
		}]
	}`
	if err := CheckValidationPayload([]byte(valid)); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	tests := []struct {
		name    string
		payload string
	}{
		{"missing summary", `{"results": []}`},
		{"bad match level", `{
			"summary": {"rows": 1, "care_label_matches": 0, "hang_tag_matches": 0},
			"results": [{
				"row": {"style": "", "size": "", "color": "", "care_upc": "", "hang_upc": ""},
				"care_label": {"match": "styleish", "upc_expected": "", "upc_actual": "", "upc_matches": false, "item": null},
				"hang_tag": {"match": "none", "upc_expected": "", "upc_actual": "", "upc_matches": false, "item": null}
			}]
		}`},
		{"negative count", `{"summary": {"rows": -1, "care_label_matches": 0, "hang_tag_matches": 0}, "results": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckValidationPayload([]byte(tt.payload)); err == nil {
				t.Fatal("CheckValidationPayload() error = nil, want violation")
			}
		})
	}
}
