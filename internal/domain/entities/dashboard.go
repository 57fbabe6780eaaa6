package entities

// BatchTrend aggregates one batch's findings for the dashboard charts
type BatchTrend struct {
	BatchID         int64   `json:"batchId"`
	BatchDate       string  `json:"batchDate"`
	HighRisk        int     `json:"highRisk"`
	MediumRisk      int     `json:"mediumRisk"`
	LowRisk         int     `json:"lowRisk"`
	AvgScore        float64 `json:"avgScore"`
	AndroidHighRisk int     `json:"androidHighRisk"`
	IOSHighRisk     int     `json:"iosHighRisk"`
}

// AppCard is one application's entry in a batch detail view
type AppCard struct {
	Name             string `json:"name"`
	BundleID         string `json:"bundleId"`
	Icon             string `json:"icon"`
	SecurityScore    int    `json:"securityScore"`
	HighRiskFindings int    `json:"highRiskFindings"`
	ReportURL        string `json:"reportUrl"`
}

// PlatformStats summarizes one platform inside a batch
type PlatformStats struct {
	Apps         []AppCard `json:"apps"`
	TotalApps    int       `json:"totalApps"`
	AvgScore     float64   `json:"avgScore"`
	HighRiskApps int       `json:"highRiskApps"`
}

// BatchDetail is the per-platform breakdown of a batch
type BatchDetail struct {
	Current struct {
		Android PlatformStats `json:"android"`
		IOS     PlatformStats `json:"ios"`
	} `json:"current"`
}

// NewBatchDetail builds the per-platform breakdown from a batch's scans.
// Scans of unknown platform are left out.
func NewBatchDetail(scans []Scan) *BatchDetail {
	detail := &BatchDetail{}
	detail.Current.Android.Apps = []AppCard{}
	detail.Current.IOS.Apps = []AppCard{}

	for _, scan := range scans {
		var stats *PlatformStats
		switch scan.Platform {
		case PlatformAndroid:
			stats = &detail.Current.Android
		case PlatformIOS:
			stats = &detail.Current.IOS
		default:
			continue
		}

		stats.Apps = append(stats.Apps, AppCard{
			Name:             scan.AppName,
			BundleID:         scan.BundleID,
			Icon:             scan.IconPath,
			SecurityScore:    scan.SecurityScore,
			HighRiskFindings: scan.HighFindings,
			ReportURL:        scan.PDFPath,
		})
		stats.TotalApps++
		stats.AvgScore += float64(scan.SecurityScore)
		if scan.HighFindings > 0 {
			stats.HighRiskApps++
		}
	}

	for _, stats := range []*PlatformStats{&detail.Current.Android, &detail.Current.IOS} {
		if stats.TotalApps > 0 {
			stats.AvgScore /= float64(stats.TotalApps)
		}
	}

	return detail
}

// InventoryItem is the latest known scan of one bundle id
type InventoryItem struct {
	AppName         string `json:"app_name"`
	BundleID        string `json:"bundle_id"`
	Platform        string `json:"platform"`
	SecurityScore   int    `json:"security_score"`
	HighFindings    int    `json:"high_findings"`
	WarningFindings int    `json:"warning_findings"`
	InfoFindings    int    `json:"info_findings"`
	BatchID         int64  `json:"batch_id"`
	BatchDate       string `json:"batch_date"`
	IconPath        string `json:"icon_path"`
}

// HistoryPoint is one batch's result for an app
type HistoryPoint struct {
	SecurityScore   int    `json:"security_score"`
	HighFindings    int    `json:"high_findings"`
	WarningFindings int    `json:"warning_findings"`
	InfoFindings    int    `json:"info_findings"`
	BatchDate       string `json:"batch_date"`
}

// AppScan is a scan row joined with its batch period
type AppScan struct {
	Scan
	BatchDate string `json:"batch_date"`
}

// AppHistory is an app's scan in one batch together with its trend
type AppHistory struct {
	CurrentScan *AppScan       `json:"currentScan"`
	History     []HistoryPoint `json:"history"`
}
