package entities

import (
	"path/filepath"
	"strings"
	"time"
)

// Platform is the mobile platform an application package targets
type Platform string

// Supported platforms
const (
	PlatformAndroid Platform = "Android"
	PlatformIOS     Platform = "iOS"
	PlatformUnknown Platform = "Unknown"
)

// Package file extensions accepted by the scanner
const (
	ExtAPK = ".apk"
	ExtIPA = ".ipa"
)

// PlatformFromPath derives the platform from a package file name.
// Only the extension is considered, never service metadata.
func PlatformFromPath(path string) Platform {
	switch {
	case strings.HasSuffix(path, ExtAPK):
		return PlatformAndroid
	case strings.HasSuffix(path, ExtIPA):
		return PlatformIOS
	default:
		return PlatformUnknown
	}
}

// IsScannablePackage reports whether a file name is an .apk or .ipa package
func IsScannablePackage(name string) bool {
	return strings.HasSuffix(name, ExtAPK) || strings.HasSuffix(name, ExtIPA)
}

// Scan is the persisted result of processing one application package
type Scan struct {
	ID              int64     `json:"id"`
	BatchID         int64     `json:"batch_id"`
	ScanDate        time.Time `json:"scan_date"`
	AppName         string    `json:"app_name"`
	BundleID        string    `json:"bundle_id"`
	Version         string    `json:"version"`
	Platform        Platform  `json:"platform"`
	SecurityScore   int       `json:"security_score"`
	HighFindings    int       `json:"high_findings"`
	WarningFindings int       `json:"warning_findings"`
	InfoFindings    int       `json:"info_findings"`
	SecureFindings  int       `json:"secure_findings"`
	IconPath        string    `json:"icon_path"`
	PDFPath         string    `json:"pdf_path"`
	CreatedAt       time.Time `json:"created_at"`
}

var artifactNameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// ArtifactBaseName returns the file-name stem used for a scan's icon and report.
// Spaces and path separators become underscores so the stem is always a
// single path element.
func ArtifactBaseName(appName, scanHash string) string {
	return artifactNamePart(appName) + "_" + artifactNamePart(scanHash)
}

func artifactNamePart(s string) string {
	s = artifactNameReplacer.Replace(s)
	if filepath.Separator != '/' && filepath.Separator != '\\' {
		s = strings.ReplaceAll(s, string(filepath.Separator), "_")
	}
	if s == "" || s == "." || s == ".." {
		return UnknownValue
	}
	return s
}

// IconFileName returns the icon file name for an app and scan hash
func IconFileName(appName, scanHash string) string {
	return ArtifactBaseName(appName, scanHash) + "_icon.png"
}

// ReportFileName returns the PDF report file name for an app and scan hash
func ReportFileName(appName, scanHash string) string {
	return ArtifactBaseName(appName, scanHash) + ".pdf"
}

// PackageName returns the base name of a package path
func PackageName(path string) string {
	return filepath.Base(path)
}
