package search

import (
	"robosearch/models"
)

// MoveCombinations enumerates dirs^n, every assignment of one direction per
// robot, lexicographically over dirs with robot 0 most significant. For two
// robots and [L U R D N]: L:L, L:U, L:R, L:D, L:N, U:L, ...
// The product grows as len(dirs)^n, which limits the engine to a handful of robots.
// FUTURE: expand the combinations of one node in parallel; children only read the parent.
func MoveCombinations(n int, dirs []models.Direction) [][]models.Direction {
	k := len(dirs)
	if n <= 0 || k == 0 {
		return nil
	}
	total := 1
	for i := 0; i < n; i++ {
		total *= k
	}

	combos := make([][]models.Direction, 0, total)
	for row := 0; row < total; row++ {
		combo := make([]models.Direction, n)
		rest := row
		for robot := n - 1; robot >= 0; robot-- {
			combo[robot] = dirs[rest%k]
			rest /= k
		}
		combos = append(combos, combo)
	}
	return combos
}
