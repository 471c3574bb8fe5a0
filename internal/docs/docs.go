// Package docs holds the uploaded-document records listed on the dashboard.
package docs

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultExtension is the only document type the service accepts.
const DefaultExtension = ".pdf"

// uploadDateLayouts are tried in order. The backend serialises naive UTC
// datetimes, so most values carry no zone.
var uploadDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// Record is one uploaded document. The filename is unique per user and acts
// as the document identifier everywhere else in the client.
type Record struct {
	Filename   string    `json:"filename"`
	UploadDate time.Time `json:"upload_date"`
}

// UnmarshalJSON accepts any of the upload_date layouts the backend emits.
// An unparseable date leaves UploadDate zero rather than failing the list.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Filename   string `json:"filename"`
		UploadDate string `json:"upload_date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Filename = raw.Filename
	r.UploadDate = parseUploadDate(raw.UploadDate)
	return nil
}

func parseUploadDate(s string) time.Time {
	for _, layout := range uploadDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DisplayDate formats the upload date for list rows.
func (r Record) DisplayDate() string {
	if r.UploadDate.IsZero() {
		return "unknown date"
	}
	return r.UploadDate.Format("Jan 02, 2006")
}

// Filter returns the records whose filename contains term, ignoring case.
// An empty term returns every record. The input slice is never modified.
func Filter(records []Record, term string) []Record {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if needle == "" || strings.Contains(strings.ToLower(r.Filename), needle) {
			out = append(out, r)
		}
	}
	return out
}

// HasExtension reports whether name ends in ext. The match is case-sensitive,
// mirroring the check the upload endpoint performs.
func HasExtension(name, ext string) bool {
	if ext == "" {
		ext = DefaultExtension
	}
	return strings.HasSuffix(name, ext)
}

// CleanDroppedPath normalises a path pasted or dropped into a terminal.
// Terminals wrap dropped files in quotes, escape spaces, or hand over a
// file:// URI.
func CleanDroppedPath(s string) string {
	p := strings.TrimSpace(s)
	if len(p) >= 2 {
		if (p[0] == '\'' && p[len(p)-1] == '\'') || (p[0] == '"' && p[len(p)-1] == '"') {
			p = p[1 : len(p)-1]
		}
	}
	p = strings.TrimPrefix(p, "file://")
	return strings.ReplaceAll(p, `\ `, " ")
}
