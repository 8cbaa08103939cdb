package entity

// Composition is one fiber line from a care label.
type Composition struct {
	Percent  int    `json:"percent"`
	Material string `json:"material"`
}

// Fields holds everything pattern extraction pulled out of one label region.
// A key is omitted when its pattern did not match; upc and upc_candidate are
// mutually exclusive (a checksum-valid code is never demoted to candidate).
type Fields struct {
	Size                  string        `json:"size,omitempty"`
	SizeRange             string        `json:"size_range,omitempty"`
	RNNumber              string        `json:"rn_number,omitempty"`
	UPC                   string        `json:"upc,omitempty"`
	UPCCandidate          string        `json:"upc_candidate,omitempty"`
	CountryOfOrigin       string        `json:"country_of_origin,omitempty"`
	Composition           []Composition `json:"composition,omitempty"`
	ExclusiveOfDecoration bool          `json:"exclusive_of_decoration,omitempty"`
	StyleNumber           string        `json:"style_number,omitempty"`
	Color                 string        `json:"color,omitempty"`
	ColorCode             string        `json:"color_code,omitempty"`
}

// LabelItem is one extracted label or tag: its fields plus provenance.
// Page is 1-based; Position is the grid column index the region came from.
type LabelItem struct {
	Fields

	Page      int    `json:"page"`
	Position  int    `json:"position"`
	Barcode   string `json:"barcode,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
}

// ParentInfo is the document-level header block shared by every label on a
// print sheet, extracted once from the first page.
type ParentInfo struct {
	Reference            string `json:"reference,omitempty"`
	JobNumber            string `json:"job_number,omitempty"`
	StyleNumber          string `json:"style_number,omitempty"`
	PONumber             string `json:"po_number,omitempty"`
	Date                 string `json:"date,omitempty"`
	ProductName          string `json:"product_name,omitempty"`
	Manufacturer         string `json:"manufacturer,omitempty"`
	ManufacturerLocation string `json:"manufacturer_location,omitempty"`
	Color                string `json:"color,omitempty"`
}
