package converter

// Token is one parsed DSL line.
type Token struct {
	Command Command
	// Name is the command as written. For known commands it is the canonical
	// keyword; for CommandUnknown it is the name the line used.
	Name string
	Args []string
	// Line is the trimmed source text.
	Line string
	// LineNumber is 1-based. Zero when the token was produced by TokenizeLine
	// outside of a conversion.
	LineNumber int
}

// Unrecognized is an input line that matched no rule.
type Unrecognized struct {
	LineNumber int
	Text       string
}
