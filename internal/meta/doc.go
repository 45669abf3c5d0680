// Package meta tokenizes and validates directive arguments.
//
// Argument text is a list of `key`, `key=value` or `key="quoted value"`
// entries separated by spaces or commas:
//
//	//modbind:class name=Point, module="geo"
//	//modbind:class noattr
//
// Keys are identifiers; quoted values use Go string literal syntax.
package meta
