// Package script loads and serializes whole scripts.
//
// A script is a sequence of physical lines. Each logical line is a block, a
// comment ("## text") or blank. A physical line that starts with whitespace
// continues the block on the line before it, which is how indented output
// (see Script.Text) reads back in.
//
// Loading is all or nothing: the first malformed line or unknown keyword
// fails Parse and no Script is returned.
package script
