package importer

import (
	"bytes"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/models"
)

// Parse dispatches on the file extension: .xlsx goes through excelize,
// everything else is read as CSV.
func Parse(filename string, r io.Reader) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return ParseXLSX(r)
	case ".csv", ".txt", "":
		return ParseCSV(r)
	}
	return nil, apperr.New(apperr.CodeMalformedImport, "unsupported file type "+filepath.Ext(filename))
}

// ParseXLSX reads the first sheet of a workbook with the same header rules as CSV.
func ParseXLSX(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeMalformedImport, "read xlsx")
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeMalformedImport, "open xlsx")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, apperr.New(apperr.CodeMalformedImport, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeMalformedImport, "read sheet "+sheet)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) ([]Record, error) {
	if len(rows) == 0 || !hasText(rows[0]) {
		return nil, apperr.New(apperr.CodeMalformedImport, "missing header row")
	}
	idx := matchHeaders(rows[0])

	out := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if !keep(row) {
			continue
		}
		out = append(out, Record{
			Name:    cell(row, idx[fName]),
			Company: cell(row, idx[fCompany]),
			Phone:   cell(row, idx[fPhone]),
			Email:   cell(row, idx[fEmail]),
			Address: cell(row, idx[fAddress]),
			Website: cell(row, idx[fWebsite]),
			Rating:  cell(row, idx[fRating]),
			Reviews: cell(row, idx[fReviews]),
		})
	}
	return out, nil
}

func hasText(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

// BuildLeads turns parsed records into New Lead entries of campaignID, ids
// l-<campaignID>-<row index>. Missing identity fields get placeholders.
func BuildLeads(campaignID string, recs []Record) []models.Lead {
	out := make([]models.Lead, len(recs))
	for i, r := range recs {
		out[i] = models.Lead{
			ID:         "l-" + campaignID + "-" + strconv.Itoa(i),
			CampaignID: campaignID,
			Name:       orDefault(r.Name, models.PlaceholderName),
			Company:    orDefault(r.Company, models.PlaceholderCompany),
			Phone:      orDefault(r.Phone, models.PlaceholderPhone),
			Email:      r.Email,
			Address:    r.Address,
			Website:    r.Website,
			Rating:     orDefault(r.Rating, models.DefaultLeadRating),
			Reviews:    orDefault(r.Reviews, models.DefaultLeadReviews),
			Summary:    models.ImportedLeadSummary,
			Status:     models.StatusNewLead,
		}
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
