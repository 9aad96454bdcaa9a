// Package domain models the MeteoAgent K-index forecast widget data.
//
// # Data Source
//
// The K-index (0-9) quantifies geomagnetic disturbance. MeteoAgent publishes
// a multi-day forecast as an embeddable HTML widget rather than a JSON API,
// so values are extracted from semi-structured markup. Each forecast day is
// scoped under an element carrying a compact-date class:
//
//	<div class="date_20240315"><span class="value__num">4</span></div>
//
// The value text sometimes carries the unit as a prefix ("K 4"); the last
// whitespace-separated field is the number. See [Extract].
//
// # Tri-state readings
//
// A day's value can be a measured zero, so 0 alone cannot signal "no data".
// Every [Reading] therefore carries a [Status] alongside the value:
//
//	ok       element found, text parsed as an integer
//	missing  no element for the date in the markup
//	invalid  element found but text was not an integer
//
// Sentinel readings keep Value 0 with a non-ok Status, and the status is
// carried all the way into consumer-visible attributes.
//
// # Severity classification
//
// Severity derives from the NOAA geomagnetic storm scale, simplified to four
// user-facing tiers:
//
//	K >= 5  High    (storm conditions, G1 and above)
//	K >= 4  Medium  (active)
//	K >= 1  Low     (quiet to unsettled)
//	K == 0  None
//
// A non-ok reading classifies as Unknown, never as None. The icon hint uses
// a coarser two-tier ladder (>=5, >=4, default) that is intentionally kept
// separate from the severity ladder.
package domain
