// Package generator defines the generic file generation contract implemented
// by the yaml and static generators.
package generator

// Generator is implemented by specific file generators (yaml, static).
// The Options type parameter allows each implementation to define its own options structure.
type Generator[T any, Options any] interface {
	Generate(model T, opts Options) (string, error)
}
