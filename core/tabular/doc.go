// Package tabular implements the CSV snapshot format used for repository inventories.
//
// It is a deliberately small codec: every value is a string, the first row is the
// header, and decoding never fails. Malformed quoting is recovered from on a
// best-effort basis (an unterminated quote is closed at end of input, a stray quote
// toggles quoted mode).
//
// # Format
//
//   - Fields are separated by a comma.
//   - A field is quoted when it contains a comma, a double quote or a line break.
//   - Quotes inside a quoted field are doubled.
//   - CRLF and LF are both accepted on decode; Encode emits LF and a single trailing LF.
//
// # Usage
//
//	table := tabular.Decode(text)
//	for _, rec := range table.Records {
//	    fmt.Println(rec.Name(), rec.Archived())
//	}
//	out := tabular.Encode(table.Header, table.Records)
package tabular
