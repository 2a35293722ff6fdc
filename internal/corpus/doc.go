// Package corpus reads a test262-style test corpus into TestRecords.
//
// A corpus is a directory tree of JavaScript test files. Each test carries a
// YAML frontmatter block between "/*---" and "---*/" declaring its flags and,
// for negative tests, the phase in which the error is expected:
//
//	/*---
//	description: let declarations are not allowed in statement positions
//	negative:
//	  phase: early
//	  type: SyntaxError
//	flags: [onlyStrict]
//	---*/
//
// Walk visits every file whose name ends in ".js" (any case) and whose path
// does not contain "_FIXTURE". Identifiers are corpus-relative,
// slash-separated and NFC-normalized so they compare equal to entries in a
// hand-maintained exceptions file on every platform.
package corpus
