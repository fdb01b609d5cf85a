package document

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// PathDetectionResult describes a PDF path found in chat input
type PathDetectionResult struct {
	HasPath bool
	Path    string
	// Query is the input with the path removed
	Query string
}

var pdfEnd = regexp.MustCompile(`(?i)\.pdf(["']|\s|$)`)

// DetectPDFPath looks for an existing .pdf file in text typed or dropped into
// the terminal. Handles quoted paths, backslash-escaped spaces, file:// URIs,
// a leading ~ and paths with unescaped spaces.
func DetectPDFPath(input string) PathDetectionResult {
	result := PathDetectionResult{Query: strings.TrimSpace(input)}
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return result
	}

	if p, ok := resolvePDF(trimmed); ok {
		result.HasPath = true
		result.Path = p
		result.Query = ""
		return result
	}

	// Try every span that ends in ".pdf" and starts at a word boundary,
	// longest first, so "/tmp/My Report.pdf" beats "Report.pdf".
	for _, loc := range pdfEnd.FindAllStringSubmatchIndex(trimmed, -1) {
		end := loc[0] + len(".pdf")
		if loc[3] > loc[2] && (trimmed[loc[2]] == '"' || trimmed[loc[2]] == '\'') {
			end = loc[3]
		}

		for _, start := range wordStarts(trimmed[:end]) {
			candidate := trimmed[start:end]
			if p, ok := resolvePDF(candidate); ok {
				result.HasPath = true
				result.Path = p
				result.Query = strings.Join(strings.Fields(trimmed[:start]+" "+trimmed[end:]), " ")
				return result
			}
		}
	}

	return result
}

// wordStarts returns the offsets where a word starts, earliest first
func wordStarts(s string) []int {
	var starts []int
	for i := 0; i < len(s); i++ {
		if i == 0 || s[i-1] == ' ' || s[i-1] == '\t' {
			if s[i] != ' ' && s[i] != '\t' {
				starts = append(starts, i)
			}
		}
	}
	return starts
}

// resolvePDF normalises candidate and reports whether it names an existing
// PDF file
func resolvePDF(candidate string) (string, bool) {
	p := strings.TrimSpace(candidate)
	p = strings.Trim(p, `"'`)

	if strings.HasPrefix(p, "file://") {
		u, err := url.Parse(p)
		if err != nil {
			return "", false
		}
		p = u.Path
		if runtime.GOOS == "windows" {
			p = strings.TrimPrefix(p, "/")
		}
	} else if strings.Contains(p, "://") {
		return "", false
	}

	if runtime.GOOS != "windows" {
		p = strings.ReplaceAll(p, `\ `, " ")
	}

	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		p = filepath.Join(home, p[1:])
	}

	if !IsPDF(p) {
		return "", false
	}

	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}

	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return p, true
}
