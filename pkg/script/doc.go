// Package script implements the client's embedded command mini-language.
//
// A raw input string is parsed into a CodeBlock, an ordered sequence of
// CodeLine commands split on semicolons with brace nesting respected. Each
// CodeLine carries a synchronization mode derived from its hash command, and
// can be expanded against match wildcards and session variables before it is
// sent or executed.
package script
