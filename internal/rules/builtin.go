package rules

// Python opens a level after every header line ending in a colon. The keyword
// patterns after the first are subsumed by it and only document which headers
// are expected. There are no decrease patterns: dedentation in Python lives in
// the source's own whitespace, which this rule set does not re-derive.
var Python = MustDeclare("python",
	[]string{
		`:\s*$`,
		`^def\s+\w+\s*\(`,
		`^class\s+\w+`,
		`^if\s+.*:\s*$`,
		`^elif\s+.*:\s*$`,
		`^else\s*:\s*$`,
		`^for\s+.*:\s*$`,
		`^while\s+.*:\s*$`,
		`^try\s*:\s*$`,
		`^except.*:\s*$`,
		`^finally\s*:\s*$`,
	},
	nil,
)

// Java covers brace-delimited C-family code. A line such as "} else {"
// matches both lists: it is printed one level out and opens the next level.
var Java = MustDeclare("java",
	[]string{
		`\{\s*$`,
		`^if\s*\(`,
		`^else\s*$`,
		`^else\s+if\s*\(`,
		`^for\s*\(`,
		`^while\s*\(`,
		`^do\s*$`,
		`^try\s*$`,
		`^catch\s*\(`,
		`^finally\s*$`,
	},
	[]string{
		`^\}\s*$`,
		`^\}\s*else\b`,
		`^\}\s*else\s+if\b`,
		`^\}\s*while\b`,
		`^\}\s*catch\b`,
		`^\}\s*finally\b`,
	},
)
