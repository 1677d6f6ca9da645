package stages

// Uppercase converts ASCII letters to uppercase. Bytes outside a-z pass
// through untouched, which keeps multi-byte sequences intact.
func Uppercase(input string) (string, error) {
	out := []byte(input)
	for i := 0; i < len(out); i++ {
		if out[i] >= 'a' && out[i] <= 'z' {
			out[i] -= 'a' - 'A'
		}
	}

	return string(out), nil
}
