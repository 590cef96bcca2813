package extract

import "github.com/Abraxas-365/saenggibu/pkg/classify"

// TableRef points at a generic table by page and carries its text.
type TableRef struct {
	PageIndex int    `json:"page_index"`
	TableText string `json:"table_text"`
}

// LifeRecordTables groups every titled table that no dedicated extractor
// handles by its title. The last table of each page is dropped first since
// it is usually page footer boilerplate.
func LifeRecordTables(pages []classify.Page) map[string][]TableRef {
	out := map[string][]TableRef{}
	for _, p := range pages {
		tables := p.Tables
		if len(tables) > 0 {
			tables = tables[:len(tables)-1]
		}
		for _, t := range tables {
			if t.Title == "" || classify.ReservedTitles[t.Title] {
				continue
			}
			out[t.Title] = append(out[t.Title], TableRef{PageIndex: t.PageIndex, TableText: t.Text})
		}
	}
	return out
}
