// Package adapter wraps richer, token-aware formatters for markup,
// stylesheets and scripts behind one capability contract.
//
// A Formatter either returns the formatted text or an error; the dispatcher
// treats both a missing formatter and a failing one as a reason to move on to
// the line-based indenters. What a formatter does internally is its own
// business: the markup and stylesheet formatters reflow their input, the
// script formatter only reassigns leading whitespace.
package adapter
