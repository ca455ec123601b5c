// Package export renders saved bills to files for sharing outside the app.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"splitinvoice/internal/core"
	"splitinvoice/internal/ledger"
)

// Header is the CSV header for an exported bill.
const Header = "date,restaurant,location,person,item,price,food_total,tax_share,fee_share,person_total"

const dateFormat = "2006-01-02"

// WriteBillCSV writes one bill as CSV, one row per line item plus a
// totals row per person. Per-person tax and fee shares are recomputed
// from the snapshot with the same arithmetic the calculator uses.
func WriteBillCSV(w io.Writer, bill core.Bill) error {
	l := ledger.FromBill(bill)
	totals := l.Totals()

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	date := bill.Date.Format(dateFormat)
	for i, person := range bill.People {
		for _, item := range person.Items {
			row := []string{
				date,
				bill.Restaurant,
				bill.Location,
				person.Name,
				item.Description,
				item.Price.String(),
				"", "", "", "",
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing item row: %w", err)
			}
		}

		pt := totals.People[i]
		row := []string{
			date,
			bill.Restaurant,
			bill.Location,
			person.Name,
			"",
			"",
			pt.FoodTotal.String(),
			pt.TaxShare.String(),
			pt.FeeShare.String(),
			pt.Total.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing totals row: %w", err)
		}
	}

	return cw.Error()
}
