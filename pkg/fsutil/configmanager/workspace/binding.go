package workspace

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// flagNameOverrides maps field paths to flag names where the leaf field name
// alone would be ambiguous.
var flagNameOverrides = map[string]string{
	"Spec.Image.Base":          "base-image",
	"Spec.Registry.Root":       "registry-root",
	"Spec.Deploy.TLS.CertFile": "tls-cert",
	"Spec.Deploy.TLS.KeyFile":  "tls-key",
}

// flagShorthands maps flag names to their single-letter shorthand.
var flagShorthands = map[string]string{
	"target":     "t",
	"model":      "m",
	"port":       "p",
	"context":    "c",
	"kubeconfig": "k",
	"namespace":  "n",
}

// AddFlagsFromFields registers CLI flags for all configured field selectors on the
// provided command. Flags are bound directly to the config struct fields so enum
// types validate their input on Set.
func (m *ConfigManager) AddFlagsFromFields(cmd *cobra.Command) {
	for _, selector := range m.fieldSelectors {
		m.addFlagFromField(cmd, selector)
	}
}

func (m *ConfigManager) addFlagFromField(
	cmd *cobra.Command,
	selector FieldSelector[v1alpha1.Workspace],
) {
	fieldPtr := selector.Selector(m.Config)
	if fieldPtr == nil {
		return
	}

	flagName := m.GenerateFlagName(fieldPtr)
	if flagName == "" {
		return
	}

	shorthand := m.GenerateShorthand(flagName)
	flags := cmd.Flags()

	if value, ok := fieldPtr.(pflag.Value); ok {
		setFieldValue(fieldPtr, selector.DefaultValue)
		flags.VarP(value, flagName, shorthand, selector.Description)

		return
	}

	switch ptr := fieldPtr.(type) {
	case *string:
		flags.StringVarP(ptr, flagName, shorthand, defaultAs[string](selector.DefaultValue), selector.Description)
	case *bool:
		flags.BoolVarP(ptr, flagName, shorthand, defaultAs[bool](selector.DefaultValue), selector.Description)
	case *int32:
		flags.Int32VarP(ptr, flagName, shorthand, defaultAs[int32](selector.DefaultValue), selector.Description)
	case *float64:
		flags.Float64VarP(ptr, flagName, shorthand, defaultAs[float64](selector.DefaultValue), selector.Description)
	case *metav1.Duration:
		defaultValue := defaultAs[metav1.Duration](selector.DefaultValue)
		flags.DurationVarP(&ptr.Duration, flagName, shorthand, defaultValue.Duration, selector.Description)
	}
}

// GenerateFlagName derives the CLI flag name for a config struct field. The field
// is located by walking the config struct, and the name is the kebab-cased leaf
// field name unless an override applies.
func (m *ConfigManager) GenerateFlagName(fieldPtr any) string {
	path := m.findFieldPath(fieldPtr)
	if path == "" {
		return ""
	}

	if override, ok := flagNameOverrides[path]; ok {
		return override
	}

	segments := strings.Split(path, ".")

	return camelCaseToKebab(segments[len(segments)-1])
}

// GenerateShorthand returns the single-letter shorthand for a flag name, or an
// empty string when the flag has no shorthand.
func (m *ConfigManager) GenerateShorthand(flagName string) string {
	return flagShorthands[flagName]
}

// findFieldPath walks the config struct and returns the dotted path of the field
// the pointer refers to, or an empty string when the pointer is not a config field.
func (m *ConfigManager) findFieldPath(fieldPtr any) string {
	if fieldPtr == nil || m.Config == nil {
		return ""
	}

	target := reflect.ValueOf(fieldPtr)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return ""
	}

	root := reflect.ValueOf(m.Config).Elem()

	return findPathToField(root, target.Pointer(), target.Type().Elem(), "")
}

func findPathToField(
	current reflect.Value,
	targetAddr uintptr,
	targetType reflect.Type,
	prefix string,
) string {
	if current.Kind() != reflect.Struct {
		return ""
	}

	for index := range current.NumField() {
		field := current.Field(index)
		if !field.CanAddr() {
			continue
		}

		path := current.Type().Field(index).Name
		if prefix != "" {
			path = prefix + "." + path
		}

		// A struct shares its address with its first field, so the type must
		// match as well as the address.
		if field.Addr().Pointer() == targetAddr && field.Type() == targetType {
			return path
		}

		if field.Kind() == reflect.Struct {
			if found := findPathToField(field, targetAddr, targetType, path); found != "" {
				return found
			}
		}
	}

	return ""
}

// camelCaseToKebab converts a Go field name to kebab-case, keeping acronym runs
// together (DNSLabel becomes dns-label, MemoryGB becomes memory-gb).
func camelCaseToKebab(name string) string {
	var builder strings.Builder

	runes := []rune(name)
	for index, character := range runes {
		if unicode.IsUpper(character) {
			startsWord := index > 0 && !unicode.IsUpper(runes[index-1])
			endsAcronym := index > 0 && unicode.IsUpper(runes[index-1]) &&
				index+1 < len(runes) && unicode.IsLower(runes[index+1])

			if startsWord || endsAcronym {
				builder.WriteByte('-')
			}

			builder.WriteRune(unicode.ToLower(character))
		} else {
			builder.WriteRune(character)
		}
	}

	return builder.String()
}

// defaultAs coerces a selector default value to the requested type, returning the
// zero value when the default is nil or of a different type.
func defaultAs[T any](value any) T {
	var zero T

	if value == nil {
		return zero
	}

	if typed, ok := value.(T); ok {
		return typed
	}

	return zero
}
