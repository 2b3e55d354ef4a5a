// Package resolver rewrites human-facing share links of hosted spreadsheets
// into ordered lists of direct-download candidates.
package resolver

import (
	"net/url"
	"regexp"
	"strings"
)

type SourceClass string

func (c SourceClass) String() string {
	return string(c)
}

const (
	SpreadsheetHost SourceClass = "spreadsheet_host"
	EnterpriseCloud SourceClass = "enterprise_cloud"
	Other           SourceClass = "other"
)

// Candidate is a single download attempt: the strategy name is used for
// logging and for the aggregated failure report.
type Candidate struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

var (
	sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	gidPattern     = regexp.MustCompile(`[?&#]gid=(\d+)`)
	filePathID     = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	fileQueryID    = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	residPattern   = regexp.MustCompile(`resid=([^&]+)`)
)

// Classify decides which fetch path a source URL takes. Spreadsheet-host
// links win over enterprise markers that may appear in their query strings.
func Classify(rawURL string) SourceClass {
	if strings.Contains(rawURL, "docs.google.com/spreadsheets") {
		return SpreadsheetHost
	}
	if strings.Contains(rawURL, "onedrive") ||
		strings.Contains(rawURL, "excel.cloud.microsoft") ||
		strings.Contains(rawURL, "sharepoint") {
		return EnterpriseCloud
	}
	return Other
}

// Resolve never fails; an unrecognized URL comes back as its own single candidate.
func Resolve(rawURL string) []Candidate {
	switch {
	case strings.Contains(rawURL, "docs.google.com/spreadsheets"):
		return []Candidate{resolveSheet(rawURL)}
	case strings.Contains(rawURL, "drive.google.com"):
		return []Candidate{resolveDrive(rawURL)}
	case strings.Contains(rawURL, "dropbox.com"):
		return []Candidate{resolveDropbox(rawURL)}
	case strings.Contains(rawURL, "excel.cloud.microsoft"):
		return resolveCloudExcel(rawURL)
	case strings.Contains(rawURL, "onedrive.live.com"):
		return []Candidate{resolveOneDrive(rawURL)}
	case strings.Contains(rawURL, "1drv.ms"):
		return []Candidate{{Name: "onedrive-short", URL: strings.Replace(rawURL, "1drv.ms", "onedrive.live.com", 1)}}
	case strings.Contains(rawURL, "sharepoint.com"):
		return []Candidate{resolveSharePoint(rawURL)}
	}
	return []Candidate{direct(rawURL)}
}

func direct(rawURL string) Candidate {
	return Candidate{Name: "direct", URL: rawURL}
}

func resolveSheet(rawURL string) Candidate {
	matches := sheetIDPattern.FindStringSubmatch(rawURL)
	if len(matches) < 2 {
		return direct(rawURL)
	}

	exportURL := "https://docs.google.com/spreadsheets/d/" + matches[1] + "/export?format=xlsx"
	if gid := gidPattern.FindStringSubmatch(rawURL); len(gid) == 2 {
		exportURL += "&gid=" + gid[1]
	}
	return Candidate{Name: "sheet-export", URL: exportURL}
}

func resolveDrive(rawURL string) Candidate {
	var fileID string
	if matches := filePathID.FindStringSubmatch(rawURL); len(matches) == 2 {
		fileID = matches[1]
	}
	if matches := fileQueryID.FindStringSubmatch(rawURL); len(matches) == 2 {
		fileID = matches[1]
	}
	if fileID == "" {
		return direct(rawURL)
	}
	return Candidate{Name: "drive-download", URL: "https://drive.google.com/uc?export=download&id=" + fileID}
}

func resolveDropbox(rawURL string) Candidate {
	rewritten := strings.Replace(rawURL, "www.dropbox.com", "dl.dropboxusercontent.com", 1)
	rewritten, _, _ = strings.Cut(rewritten, "?")
	return Candidate{Name: "dropbox-direct", URL: rewritten}
}

func resolveCloudExcel(rawURL string) []Candidate {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return []Candidate{direct(rawURL)}
	}

	docID := parsed.Query().Get("docId")
	driveID := parsed.Query().Get("driveId")
	if docID == "" || driveID == "" {
		return []Candidate{direct(rawURL)}
	}

	itemID := docID
	if _, after, found := strings.Cut(docID, "!"); found {
		itemID = after
	}

	content := "https://graph.microsoft.com/v1.0/drives/" + driveID + "/items/" + itemID + "/content"
	return []Candidate{
		{Name: "graph-content", URL: content},
		{Name: "graph-download", URL: content + "?download=true"},
	}
}

func resolveOneDrive(rawURL string) Candidate {
	matches := residPattern.FindStringSubmatch(rawURL)
	if len(matches) < 2 {
		return direct(rawURL)
	}

	resid, err := url.QueryUnescape(matches[1])
	if err != nil {
		resid = matches[1]
	}
	escaped := strings.ReplaceAll(url.QueryEscape(resid), "%21", "!")
	return Candidate{Name: "onedrive-download", URL: "https://onedrive.live.com/download?resid=" + escaped}
}

func resolveSharePoint(rawURL string) Candidate {
	var rewritten string
	switch {
	case strings.Contains(rawURL, "/:x:/"):
		rewritten = strings.Replace(rawURL, "/:x:/", "/:x:/r/", 1)
	case strings.Contains(rawURL, "/:w:/"):
		rewritten = strings.Replace(rawURL, "/:w:/", "/:w:/r/", 1)
	default:
		return direct(rawURL)
	}

	if strings.Contains(rewritten, "?") {
		rewritten += "&download=1"
	} else {
		rewritten += "?download=1"
	}
	return Candidate{Name: "sharepoint-download", URL: rewritten}
}
