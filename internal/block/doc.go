// Package block defines the typed operations a script is made of.
//
// Every script line names a block kind by its leading keyword. The Registry
// maps keywords to constructors; a kind knows how to read its arguments from a
// syntax.Cursor, write them back through a syntax.Writer and execute against
// an execution.Context.
//
// LINE SHAPE:
//
//	[!] [#label] KEYWORD ARG... [-> VAR "name"]
//
// The disabled marker, label and keyword are handled by the script loader;
// a kind's Parse and Write only see the arguments that follow the keyword.
// Parse and Write must stay symmetric: writing a parsed block and parsing the
// result yields a block with equal fields.
//
// EXECUTION:
//
// Execute substitutes {name} placeholders in templated fields, performs the
// kind's action and stores its result in the output variable when one is
// named. Placeholders without a binding are left as written. Blocks only
// communicate through the context's variables.
package block
