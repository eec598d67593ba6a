package portal

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/rmedina/cfewatch/internal/types"
)

// Column positions in the portal's results table.
const (
	colID          = 0
	colDescription = 3
	colPublished   = 6
	colStatus      = 7
	colAwardee     = 8
	colAmount      = 9
	minColumns     = 10
)

// parseRecords pulls tender rows out of the results table HTML. Rows with
// fewer than ten cells are headers, spinners or "no results" placeholders and
// are skipped.
func parseRecords(tableHTML string) ([]types.TenderRecord, error) {
	doc, err := html.Parse(strings.NewReader(tableHTML))
	if err != nil {
		return nil, fmt.Errorf("parse results table: %w", err)
	}

	var records []types.TenderRecord
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			cells := rowCells(n)
			if len(cells) >= minColumns && cells[colID] != "" {
				records = append(records, types.TenderRecord{
					ID:          cells[colID],
					Description: cells[colDescription],
					Published:   cells[colPublished],
					Status:      cells[colStatus],
					Awardee:     cells[colAwardee],
					Amount:      cells[colAmount],
				})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return records, nil
}

func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "td" {
			cells = append(cells, strings.TrimSpace(nodeText(c)))
		}
	}
	return cells
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}
