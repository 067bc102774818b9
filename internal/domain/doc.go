// Package domain models Indian agricultural commodity (mandi) price data.
//
// # Data Source
//
// Daily market price records originate from the data.gov.in open data
// platform, which republishes Agmarknet mandi reports through several catalog
// resources. Each resource accepts an api-key, a page limit/offset, and an
// arrival_date filter, and returns {"records": [...]}.
//
// # Upstream Schema Conventions
//
// Field names are not stable across resources. The same logical field appears
// under different keys depending on which catalog resource served it:
//
//	price:     "modal_price", "price", "rate", "wholesale_price", "max_price"
//	quantity:  "arrivals", "quantity", "volume", "arrival_quantity"
//	state:     "state", "state_name"
//	district:  "district", "district_name"
//	market:    "market", "market_name"
//	commodity: "commodity", "commodity_name", "crop_name"
//	variety:   "variety", "variety_name"
//	date:      "arrival_date", "date"
//
// Values arrive as strings or JSON numbers interchangeably. Normalization
// resolves each canonical field through its candidate list in priority order,
// taking the first present non-empty value.
//
// # Normalization Rules
//
// A record without a parseable positive price is dropped; price is the one
// required field. Quantity defaults to 0. Dates use the YYYY-MM-DD layout and
// fall back to the processing date on parse failure rather than rejecting the
// record. Min/max prices default to ±10% of the modal price when the resource
// does not supply them. Prices are rupees per quintal unless the record says
// otherwise, so the unit defaults to "Quintal".
package domain
