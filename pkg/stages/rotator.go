package stages

// Rotate moves every character one position to the right; the last
// character wraps around to the front.
func Rotate(input string) (string, error) {
	if len(input) < 2 {
		return input, nil
	}

	return input[len(input)-1:] + input[:len(input)-1], nil
}
