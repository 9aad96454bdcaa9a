package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// dateKeyLayout is the compact date format used in the widget's CSS classes,
// e.g. class "date_20240315" for 2024-03-15.
const dateKeyLayout = "20060102"

// Extract locates and parses the K-index value for one calendar date in the
// forecast widget markup.
//
// Malformed input never produces an error: a missing element yields a
// StatusMissing sentinel and non-numeric text a StatusInvalid sentinel, both
// with Value 0. The caller decides how loudly to report either.
func Extract(markup []byte, date time.Time) Reading {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return Reading{Status: StatusInvalid}
	}

	selector := fmt.Sprintf(".date_%s .value__num", date.Format(dateKeyLayout))
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return Reading{Status: StatusMissing}
	}

	// The value text may carry the unit as a prefix ("K 4"); the number is
	// always the last field.
	fields := strings.Fields(sel.Text())
	if len(fields) == 0 {
		return Reading{Status: StatusInvalid}
	}
	v, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return Reading{Status: StatusInvalid}
	}
	return Reading{Value: v, Status: StatusOK}
}
