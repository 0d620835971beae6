package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"sync"

	"github.com/Shopify/go-lua"
)

// Runtime holds one embedded interpreter with a scoring script loaded into it.
// A mutex serializes requests onto the single interpreter state.
type Runtime struct {
	mu         sync.Mutex
	state      *lua.State
	modelPath  string
	scriptPath string
}

// New creates a runtime for the given model artifact and scoring script.
// Init must be called before Run.
func New(modelPath, scriptPath string) *Runtime {
	return &Runtime{modelPath: modelPath, scriptPath: scriptPath}
}

// Init creates the interpreter state, exposes the model to the script
// environment as a global model table with path and data fields, executes the
// scoring script, and invokes its init function when one is defined. The
// script must define a run function.
func (r *Runtime) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != nil {
		return ErrAlreadyInitialized
	}

	if r.modelPath == "" {
		return ErrModelPathEmpty
	}

	if r.scriptPath == "" {
		return ErrScriptPathEmpty
	}

	data, err := os.ReadFile(r.modelPath)
	if err != nil {
		return fmt.Errorf("failed to read model artifact: %w", err)
	}

	state := lua.NewState()
	lua.OpenLibraries(state)

	state.NewTable()
	state.PushString(r.modelPath)
	state.SetField(-2, "path")
	state.PushString(string(data))
	state.SetField(-2, "data")
	state.SetGlobal("model")

	err = lua.LoadFile(state, r.scriptPath, "")
	if err != nil {
		return fmt.Errorf("failed to load scoring script: %w", err)
	}

	err = state.ProtectedCall(0, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to execute scoring script: %w", err)
	}

	state.Global("run")
	isRunDefined := state.IsFunction(-1)
	state.Pop(1)

	if !isRunDefined {
		return ErrRunNotDefined
	}

	state.Global("init")

	if state.IsFunction(-1) {
		err = state.ProtectedCall(0, 0, 0)
		if err != nil {
			return fmt.Errorf("failed to run script init: %w", err)
		}
	} else {
		state.Pop(1)
	}

	r.state = state

	return nil
}

// Run passes the raw input string to the script's run function and returns
// the JSON response body. When the function returns a table the first element
// is taken; a result that is not valid JSON is wrapped in a message field.
// Interpreter errors and panics become an error payload with a traceback.
func (r *Runtime) Run(input string) (response []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if recovered := recover(); recovered != nil {
			response = errorBody(fmt.Sprint(recovered), string(debug.Stack()))
		}
	}()

	if r.state == nil {
		return errorBody("scoring runtime is not initialized", "")
	}

	defer r.state.SetTop(0)

	var failure struct{ message, traceback string }

	r.state.PushGoFunction(func(state *lua.State) int {
		message, ok := state.ToString(-1)
		if !ok {
			message = fmt.Sprintf("(error object is a %s value)", lua.TypeNameOf(state, -1))
		}

		failure.message = message

		lua.Traceback(state, state, "", 1)
		failure.traceback, _ = state.ToString(-1)

		return 1
	})
	handlerIndex := r.state.Top()

	r.state.Global("run")
	r.state.PushString(input)

	err := r.state.ProtectedCall(1, 1, handlerIndex)
	if err != nil {
		return errorBody(failure.message, failure.traceback)
	}

	return resultBody(r.state)
}

// resultBody converts the value left by the run function into a response body.
func resultBody(state *lua.State) []byte {
	if state.TypeOf(-1) == lua.TypeTable {
		state.RawGetInt(-1, 1)
	}

	result := resultString(state, -1)

	if json.Valid([]byte(result)) {
		return []byte(result)
	}

	return marshalBody(struct {
		Message string `json:"message"`
	}{Message: result})
}

func resultString(state *lua.State, index int) string {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)

		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)

		if math.Mod(value, 1) == 0 {
			return strconv.FormatInt(int64(value), 10)
		}

		return strconv.FormatFloat(value, 'g', -1, 64)
	case lua.TypeBoolean:
		return strconv.FormatBool(state.ToBoolean(index))
	default:
		return ""
	}
}

func errorBody(message, traceback string) []byte {
	return marshalBody(struct {
		Error     string `json:"error"`
		Traceback string `json:"traceback,omitempty"`
	}{Error: message, Traceback: traceback})
}

func marshalBody(payload any) []byte {
	body, err := json.Marshal(payload)
	if err != nil {
		return []byte(`{"error":"failed to encode response"}`)
	}

	return body
}
