package annotation

import "strings"

// missingTokens are the cell values treated as absent. They match the default
// NA markers of the spreadsheet tooling annotators export from.
var missingTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a cell should be treated as an absent value.
func IsMissing(value string) bool {
	_, ok := missingTokens[strings.TrimSpace(value)]
	return ok
}
