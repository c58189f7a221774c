// Package rules holds the declarative line-shape rule sets that drive the
// rule-based indenter.
//
// A rule set is two ordered lists of matchers evaluated against a trimmed
// line: Decrease before the line is emitted, Increase after. Within a list the
// first match wins. Rule sets are plain data; new languages are added by
// declaring pattern lists with Declare, either in code or from configuration.
package rules
