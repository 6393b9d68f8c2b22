package document

// SampleExpressions seeds new plots and the terminal preview when nothing
// else is given.
func SampleExpressions() []string {
	return []string{
		"sin(x)",
		"x^2/10 - 3",
		"1/x",
	}
}
