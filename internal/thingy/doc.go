// Package thingy implements substitution tables ("thingy tables"): maps from
// byte sequences of 1 to 255 bytes onto display strings.
//
// A hex editor uses a table to render the text column of a dump. For each
// position it asks for the longest key that matches the bytes starting
// there, then falls back to shorter keys:
//
//	tbl := thingy.New()
//	tbl.LoadString("41=A\n4142=AB\n")
//
//	value, n, ok := tbl.Match([]byte("ABC")) // "AB", 2, true
//
// Tables are loaded from a line-oriented definition language:
//
//	# comment
//	2A=star       assign "star" to key 2a
//	2A            delete key 2a
//	/0A           assign a newline to key 0a
//	*00           assign a null byte to key 00
//	123=x         odd digit counts are left padded: key 01 23
//
// Malformed lines are skipped and reported in the LoadResult; they never
// abort a load.
package thingy
