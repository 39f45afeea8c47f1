package importer

import (
	"strings"
)

// Record is one parsed sheet row. Fields whose column was not found are empty.
type Record struct {
	Name    string
	Company string
	Phone   string
	Email   string
	Address string
	Website string
	Rating  string
	Reviews string
}

type field int

const (
	fName field = iota
	fCompany
	fPhone
	fEmail
	fAddress
	fWebsite
	fRating
	fReviews
	numFields
)

var synonyms = [numFields][]string{
	fName:    {"name", "contact", "decision maker", "contact name", "full name", "person"},
	fCompany: {"company", "business", "business name", "organization", "org", "company name"},
	fPhone:   {"phone", "mobile", "phone number", "tel", "telephone", "cell", "contact number"},
	fEmail:   {"email", "e-mail", "email address", "mail"},
	fAddress: {"address", "location", "street", "street address", "business address"},
	fWebsite: {"website", "web", "url", "site", "homepage", "web site"},
	fRating:  {"rating", "stars", "score", "review rating"},
	fReviews: {"reviews", "review count", "number of reviews", "total reviews"},
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(`"`, "", "'", "").Replace(h)
}

// squash drops separators so "Business_Name" and "businessname" compare equal.
func squash(s string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "", "\t", "").Replace(s)
}

// matchHeaders maps each field to a column index, -1 when absent. Exact
// synonym matches claim their column first; substring matches then only
// consider columns nobody claimed, so "Business Name" stays with company.
func matchHeaders(header []string) [numFields]int {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalizeHeader(h)
	}
	claimed := make([]bool, len(norm))

	var idx [numFields]int
	for f := range idx {
		idx[f] = -1
	}

	find := func(f field, match func(h, syn string) bool) {
		for _, syn := range synonyms[f] {
			for i, h := range norm {
				if claimed[i] || h == "" {
					continue
				}
				if match(h, syn) {
					idx[f], claimed[i] = i, true
					return
				}
			}
		}
	}

	for f := field(0); f < numFields; f++ {
		find(f, func(h, syn string) bool { return h == syn || squash(h) == squash(syn) })
	}
	for f := field(0); f < numFields; f++ {
		if idx[f] != -1 {
			continue
		}
		find(f, func(h, syn string) bool {
			return strings.Contains(h, syn) || strings.Contains(squash(h), squash(syn))
		})
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return normalizeValue(row[i])
}

func normalizeValue(s string) string {
	return strings.TrimSpace(strings.NewReplacer(`"`, "", "'", "").Replace(s))
}

// keep reports whether a data row carries anything: at least two cells, one
// of them non-blank.
func keep(row []string) bool {
	if len(row) < 2 {
		return false
	}
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}
