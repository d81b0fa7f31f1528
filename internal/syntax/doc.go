// Package syntax provides the line tokenizer and writer for Line-Script.
//
// Every script line follows one grammar:
//
//	[ "!" ] [ "#" LABEL ] KEYWORD ARG... [ "->" "VAR" "name" ]
//
// A Cursor walks a single line left to right. Block kinds compose the Cursor
// operations (ParseLabel, ParseLiteral, ParseToken, EnsureIdentifier) in the
// order their grammar lists fields, and a Writer emits the same fields in the
// same order. The two sides must stay symmetric: for every line a block kind
// accepts, writing the parsed block and parsing the output again yields a
// block with identical fields.
//
// TOKENS:
//
//	Disabled    !             marks a block that is kept but not executed
//	Label       #name         or #"name with spaces"
//	Identifier  RECAPTCHA     bare word: letters, digits, '_' and '.'
//	Literal     "text"        double-quoted; \" \\ and \n are escapes
//	Arrow       ->            introduces the output clause
//
// Whitespace outside quotes is insignificant. Lines starting with "##" are
// comments and never reach the tokenizer.
package syntax
