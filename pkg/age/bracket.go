// Package age maps face crops to one of ten fixed age brackets.
package age

import "fmt"

// Labels are the age brackets the age network was trained on, in output order.
var Labels = [NumBrackets]string{
	"(0-2)", "(4-6)", "(8-12)", "(15-20)", "(21-24)",
	"(25-32)", "(33-36)", "(38-43)", "(48-53)", "(60-100)",
}

// NumBrackets is the length of the classifier output vector.
const NumBrackets = 10

// Bracket is an index into Labels.
type Bracket int

// String returns the bracket label, or "unknown" when out of range.
func (b Bracket) String() string {
	if b < 0 || int(b) >= len(Labels) {
		return "unknown"
	}
	return Labels[b]
}

// Select returns the bracket with the highest probability.
// Ties go to the lowest index.
func Select(probs []float32) (Bracket, error) {
	if len(probs) != NumBrackets {
		return -1, fmt.Errorf("%w: got %d values, want %d", ErrBadVector, len(probs), NumBrackets)
	}
	return Bracket(argmax(probs)), nil
}

func argmax(f []float32) int {
	r, m := 0, f[0]
	for i, v := range f {
		if v > m {
			m = v
			r = i
		}
	}
	return r
}
