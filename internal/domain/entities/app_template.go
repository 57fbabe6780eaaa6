package entities

// AppTemplate is a synthetic application used to seed dashboard test data.
// Base values are jittered per generated scan.
type AppTemplate struct {
	Name            string
	BundleID        string
	Version         string
	Platform        Platform
	SecurityScore   int
	HighFindings    int
	WarningFindings int
	InfoFindings    int
	SecureFindings  int
	IconPath        string
	PDFPath         string
}
