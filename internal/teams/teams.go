// Package teams splits a group of players into two sides at random.
package teams

import "math/rand/v2"

// Shuffler permutes n elements through swap. rand.Shuffle satisfies it.
type Shuffler func(n int, swap func(i, j int))

// Split shuffles a copy of players and cuts it at ceil(n/2), so the first
// team is the larger one when the count is odd. players is not modified.
func Split[T any](players []T, shuffle Shuffler) (first, second []T) {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	shuffled := make([]T, len(players))
	copy(shuffled, players)
	shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	mid := (len(shuffled) + 1) / 2
	return shuffled[:mid:mid], shuffled[mid:]
}
