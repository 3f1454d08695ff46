package identify

import (
	"riftscan/models"
	"riftscan/pkg/ocr"
)

// Apply copies the outcome of Identify or Manual onto scan. err is the error
// returned alongside r; a non-nil err leaves the scan unresolved.
func (r Result) Apply(scan *models.Scan, err error) {
	scan.Method = string(r.Method)
	scan.Identifier = r.Identifier
	scan.TextIdentifier = r.TextIdentifier
	scan.Language = r.Language
	scan.MatchedEntry = ""
	scan.Similarity = 0
	scan.CardFile = ""
	scan.FailedReason = ""
	if r.Match != nil {
		scan.MatchedEntry = r.Match.EntryID
		scan.Similarity = r.Match.Similarity
	}
	if r.Card != nil {
		scan.CardFile = r.Card.File
	}
	if err != nil {
		scan.Method = string(MethodNone)
		scan.CardFile = ""
		scan.FailedReason = ocr.Snippet(err.Error(), 240)
	}
}
