// Package literal encodes the structured values carried by payload, data,
// dataRequest and result lines.
//
// Grammar (whitespace between tokens is ignored):
//
//	value  = null | bool | int | float | string | time | list | map
//	null   = "null"                      ; "None" also accepted on decode
//	bool   = "true" | "false"            ; "True" and "False" also accepted
//	int    = ["-"] digit+                ; int64
//	float  = ["-"] digit+ ["." digit+] [("e"|"E") ["+"|"-"] digit+]
//	         with at least a fraction or an exponent, or "inf" | "-inf" | "nan"
//	string = '"' chars '"'               ; JSON escapes; single quotes accepted
//	time   = "t" string                  ; RFC 3339 with nanoseconds, UTC on encode
//	list   = "[" [value {"," value} [","]] "]"
//	map    = "{" [string ":" value {"," string ":" value} [","]] "}"
//
// Decoded values are nil, bool, int64, float64, string, time.Time, []any and
// map[string]any. Encoding sorts map keys so equal values encode identically.
// Values crossing the wire are wrapped in a one-element list.
package literal
