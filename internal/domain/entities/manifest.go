package entities

import "time"

// ManifestFileName is the name of the manifest written into each batch directory
const ManifestFileName = "manifest.json"

// ManifestSignatureFileName is the detached armored signature of the manifest
const ManifestSignatureFileName = ManifestFileName + ".asc"

// BatchManifest lists the artifacts stored for a batch with their digests
type BatchManifest struct {
	BatchID     int64           `json:"batch_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Entries     []ManifestEntry `json:"entries"`
}

// ManifestEntry describes the artifacts of one recorded scan
type ManifestEntry struct {
	AppName    string `json:"app_name"`
	BundleID   string `json:"bundle_id"`
	Platform   string `json:"platform"`
	PDFPath    string `json:"pdf_path"`
	PDFSHA256  string `json:"pdf_sha256"`
	IconPath   string `json:"icon_path,omitempty"`
	IconSHA256 string `json:"icon_sha256,omitempty"`
}
