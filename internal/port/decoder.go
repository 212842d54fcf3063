package port

// Sheet is one decoded spreadsheet tab as an ordered sequence of
// header-keyed row records. Missing cells are defaulted to "".
type Sheet struct {
	Name    string
	Headers []string
	Rows    []map[string]string
}

// SpreadsheetDecoder turns raw spreadsheet bytes into sheets of row
// records and can render a sheet back to CSV text for the
// text-escalation path.
type SpreadsheetDecoder interface {
	Decode(data []byte) ([]Sheet, error)
	RenderCSV(sheet Sheet) string
}

// TextDecoder turns raw document bytes into a page count and a single
// concatenated text blob with carriage returns stripped.
type TextDecoder interface {
	DecodeText(data []byte) (pages int, text string, err error)
}
