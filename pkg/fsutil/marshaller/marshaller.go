// Package marshaller defines the generic serialization contract used by
// generators and config managers.
package marshaller

// Marshaller converts models of type T to and from their serialized form.
type Marshaller[T any] interface {
	// Marshal serializes the model into its textual representation.
	Marshal(model T) (string, error)

	// Unmarshal deserializes data into the provided model.
	Unmarshal(data []byte, model *T) error

	// UnmarshalString deserializes a string into the provided model.
	UnmarshalString(data string, model *T) error
}
