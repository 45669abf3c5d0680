// Package bindgen expands a binding module declaration.
//
// Expand walks the items of an ast.Module, resolves their role directives
// (function, class, struct_sequence, attr) into registration statements and
// appends three synthetic declarations: the module name constant, the extend
// routine running every registration against a module object, and the make
// routine creating a fresh module object.
//
// Per item the pipeline is:
//
//	classify  - leading cfg guards and the ordered role directives
//	resolve   - role directives grouped into variants
//	generate  - one handler per variant, feeding the nursery
//
// Any failure aborts the whole module. The input module is never mutated.
package bindgen
