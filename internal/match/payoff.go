package match

// Payoff[a][b] holds the points of the side choosing a and of the side
// choosing b.
var Payoff = [2][2][2]int{
	{{0, 0}, {3, -1}},
	{{-1, 3}, {2, 2}},
}

// Score returns the points both sides earn for one turn. Choices must be 0
// or 1.
func Score(first, second int32) (int, int) {
	p := Payoff[first][second]
	return p[0], p[1]
}
