//go:build !race

package campus

func passwordHashCost() int {
	return DefaultBcryptCost
}
