package analysis

import "fmt"

// scriptedRand replays fixed draws; it fails loudly when a draw is out of range.
type scriptedRand struct {
	vals []int
	i    int
}

func (s *scriptedRand) IntN(n int) int {
	if s.i >= len(s.vals) {
		panic(fmt.Sprintf("scriptedRand exhausted after %d draws", s.i))
	}
	v := s.vals[s.i]
	s.i++
	if v < 0 || v >= n {
		panic(fmt.Sprintf("scripted draw %d out of range [0,%d)", v, n))
	}
	return v
}

// constantNoise scripts equal noise for every record followed by a window pick.
func constantNoise(records int, noiseDraw, pick int) *scriptedRand {
	vals := make([]int, 0, records+1)
	for i := 0; i < records; i++ {
		vals = append(vals, noiseDraw)
	}
	vals = append(vals, pick)
	return &scriptedRand{vals: vals}
}

type panicRand struct{}

func (panicRand) IntN(int) int { panic("entropy source unavailable") }
