// Package indent re-indents source text one physical line at a time.
//
// Both indenters share Walk: each line is trimmed, a closing shape lowers the
// level before the line is written, an opening shape raises it after. Empty
// lines are written empty and never touch the level, and the level never drops
// below zero. The output always has as many lines as the input.
package indent
