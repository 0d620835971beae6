package scoring

import "errors"

// ErrModelPathEmpty is returned when a runtime is created without a model artifact path.
var ErrModelPathEmpty = errors.New("model path must not be empty")

// ErrScriptPathEmpty is returned when a runtime is created without a scoring script path.
var ErrScriptPathEmpty = errors.New("scoring script path must not be empty")

// ErrRunNotDefined is returned when the scoring script does not define a run function.
var ErrRunNotDefined = errors.New("scoring script does not define a run function")

// ErrAlreadyInitialized is returned when Init is called twice on the same runtime.
var ErrAlreadyInitialized = errors.New("scoring runtime is already initialized")
