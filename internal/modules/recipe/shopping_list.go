package recipe

import (
	"bytes"
	"fmt"
	"sort"

	"foodgram/internal/repository"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ShoppingListFilename is the attachment name of the download.
const ShoppingListFilename = "shopping_list.txt"

// RenderShoppingList writes one "name - total (unit)" line per item, ordered
// by name with Russian collation (Cyrillic and Latin both sort naturally),
// then by unit.
func RenderShoppingList(items []repository.ShoppingItem) []byte {
	sorted := append([]repository.ShoppingItem(nil), items...)
	col := collate.New(language.Russian, collate.IgnoreCase)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := col.CompareString(sorted[i].Name, sorted[j].Name); c != 0 {
			return c < 0
		}
		return sorted[i].MeasurementUnit < sorted[j].MeasurementUnit
	})

	var buf bytes.Buffer
	for _, it := range sorted {
		fmt.Fprintf(&buf, "%s - %d (%s)\n", it.Name, it.Total, it.MeasurementUnit)
	}
	return buf.Bytes()
}
