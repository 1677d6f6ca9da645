package stages

// LogLine prefixes the input with the logger tag.
func LogLine(input string) (string, error) {
	return "[logger] " + input, nil
}
