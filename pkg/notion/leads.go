package notion

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// ImportLeadsCSV reads a scored leads CSV and creates a Notion page per row.
// Rows are deduplicated by business name plus address so re-running an import
// does not double-post a lead. Returns the number of pages created.
func ImportLeadsCSV(ctx context.Context, c Client, dbID string, csvPath string) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, eris.Wrap(err, fmt.Sprintf("notion: open csv %s", csvPath))
	}
	defer f.Close() //nolint:errcheck

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return 0, eris.Wrap(err, "notion: read csv")
	}
	if len(records) < 2 {
		return 0, nil // header only or empty
	}

	headers := records[0]
	col := make(map[string]int, len(headers))
	for i, h := range headers {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["business_name"]; !ok {
		return 0, eris.New("notion: csv missing business_name column")
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	seen := make(map[string]struct{})
	created := 0
	for _, row := range records[1:] {
		if ctx.Err() != nil {
			return created, eris.Wrap(ctx.Err(), "notion: import cancelled")
		}

		name := cell(row, "business_name")
		if name == "" {
			continue
		}
		key := name + "|" + cell(row, "address")
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}

		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: buildLeadProperties(row, cell),
		}
		if _, err := c.CreatePage(ctx, req); err != nil {
			return created, eris.Wrap(err, "notion: create lead page")
		}
		created++
	}

	return created, nil
}

// buildLeadProperties converts one leads CSV row to Notion page properties.
// business_name becomes the title, website a URL property, lead_score a
// number, lead_type a select, and everything else rich_text.
func buildLeadProperties(row []string, cell func([]string, string) string) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: cell(row, "business_name")}},
			},
		},
	}

	if v := cell(row, "website"); v != "" {
		props["Website"] = notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  v,
		}
	}
	if v := cell(row, "lead_score"); v != "" {
		if score, err := strconv.ParseFloat(v, 64); err == nil {
			props["Score"] = notionapi.NumberProperty{
				Type:   notionapi.PropertyTypeNumber,
				Number: score,
			}
		}
	}
	if v := cell(row, "lead_type"); v != "" {
		props["Lead Type"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: v},
		}
	}

	for _, field := range []struct{ column, prop string }{
		{"category", "Category"},
		{"phone", "Phone"},
		{"address", "Address"},
		{"classification_reason", "Reason"},
	} {
		if v := cell(row, field.column); v != "" {
			props[field.prop] = notionapi.RichTextProperty{
				Type: notionapi.PropertyTypeRichText,
				RichText: []notionapi.RichText{
					{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: v}},
				},
			}
		}
	}

	return props
}
