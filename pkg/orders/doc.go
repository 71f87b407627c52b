// Package orders fetches the robot order feed and exposes it as rows.
//
// The feed is a CSV file with one header line. Each data line becomes a Row keyed by
// column name. Rows carry the codes of the head and body parts; the Catalog resolves
// those codes to the labels rendered by the order form.
//
// Errors are typed so callers can tell a failed download (DownloadError) from a
// malformed file (ParseError) or an unmapped part code (LookupError).
package orders
