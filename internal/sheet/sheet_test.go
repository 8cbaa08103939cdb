package sheet

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/garment-labs/labelaudit/internal/entity"
)

func workbook(t *testing.T, headers []string, rows [][]string) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	for c, h := range headers {
		cellName, err := excelize.CoordinatesToCellName(c+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheetName, cellName, h))
	}
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheetName, cellName, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestReadExpected(t *testing.T) {
	r := workbook(t,
		[]string{"Style #", "Size", "Colorway", "Care Label UPC", "Hang Tag UPC"},
		[][]string{
			{"av12345", "m", "black  soot", "0 36000 29145 2", "036000291453"},
			{"AV67890", "XL (16-18)", "Salsa Delight", "", "4-006381-333931"},
		},
	)

	rows, err := ReadExpected(r)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, entity.ExpectedRow{
		Style:   "AV12345",
		Size:    "M",
		Color:   "BLACK SOOT",
		CareUPC: "036000291452",
		HangUPC: "036000291453",
	}, rows[0])
	assert.Equal(t, entity.ExpectedRow{
		Style:   "AV67890",
		Size:    "XL (16-18)",
		Color:   "SALSA DELIGHT",
		CareUPC: "",
		HangUPC: "4006381333931",
	}, rows[1])
}

func TestReadExpectedGenericUPCFallback(t *testing.T) {
	r := workbook(t,
		[]string{"Style", "UPC"},
		[][]string{{"AV1", "036000291452"}},
	)

	rows, err := ReadExpected(r)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "036000291452", rows[0].CareUPC)
	assert.Empty(t, rows[0].HangUPC)
}

func TestReadExpectedCareColumnBeatsGeneric(t *testing.T) {
	r := workbook(t,
		[]string{"Style", "UPC", "Care UPC"},
		[][]string{
			{"AV1", "222222222224", "111111111117"},
			{"AV2", "222222222224", ""},
		},
	)

	rows, err := ReadExpected(r)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "111111111117", rows[0].CareUPC)
	assert.Equal(t, "222222222224", rows[1].CareUPC)
}

func TestReadExpectedHeaderAliases(t *testing.T) {
	r := workbook(t,
		[]string{"STYLE_NUMBER", "size (US)", "COLOR", "care_label", "RFID UPC"},
		[][]string{{"AV9", "S", "RED", "111111111117", "222222222224"}},
	)

	rows, err := ReadExpected(r)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.ExpectedRow{
		Style:   "AV9",
		Size:    "S",
		Color:   "RED",
		CareUPC: "111111111117",
		HangUPC: "222222222224",
	}, rows[0])
}

func TestReadExpectedMissingColumns(t *testing.T) {
	r := workbook(t,
		[]string{"Notes", "Vendor"},
		[][]string{{"first article", "r-pac"}},
	)

	rows, err := ReadExpected(r)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.ExpectedRow{}, rows[0])
}

func TestReadExpectedShortRows(t *testing.T) {
	r := workbook(t,
		[]string{"Style", "Size", "Color"},
		[][]string{{"AV1"}},
	)

	rows, err := ReadExpected(r)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AV1", rows[0].Style)
	assert.Empty(t, rows[0].Size)
	assert.Empty(t, rows[0].Color)
}

func TestReadExpectedHeaderOnly(t *testing.T) {
	r := workbook(t, []string{"Style", "Size"}, nil)

	rows, err := ReadExpected(r)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadExpectedBadStream(t *testing.T) {
	_, err := ReadExpected(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}
