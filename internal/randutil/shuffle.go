package randutil

// Shuffle permutes items in place with Fisher-Yates, walking from the last
// index down to 1 and swapping each with a uniform pick from [0, i]. It
// returns items for chaining.
func Shuffle[T any](items []T, rng *RNG) []T {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
	return items
}
