package workspace

import (
	"fmt"
	"strconv"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type flagValueSetter interface {
	Set(value string) error
}

// setFieldValueFromFlag applies a raw flag value to a config field. Enum types
// implementing Set validate their own input; plain types are parsed by kind.
func setFieldValueFromFlag(fieldPtr any, raw string) error {
	if setter, ok := fieldPtr.(flagValueSetter); ok {
		err := setter.Set(raw)
		if err != nil {
			return fmt.Errorf("set flag value: %w", err)
		}

		return nil
	}

	switch ptr := fieldPtr.(type) {
	case *string:
		*ptr = raw

		return nil
	case *metav1.Duration:
		return setDurationFromFlag(ptr, raw)
	case *bool:
		return setBoolFromFlag(ptr, raw)
	case *int32:
		return setInt32FromFlag(ptr, raw)
	case *float64:
		return setFloat64FromFlag(ptr, raw)
	default:
		return nil
	}
}

func setDurationFromFlag(target *metav1.Duration, raw string) error {
	if raw == "" {
		target.Duration = 0

		return nil
	}

	duration, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}

	target.Duration = duration

	return nil
}

func setBoolFromFlag(target *bool, raw string) error {
	if raw == "" {
		*target = false

		return nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("parse bool %q: %w", raw, err)
	}

	*target = value

	return nil
}

func setInt32FromFlag(target *int32, raw string) error {
	if raw == "" {
		*target = 0

		return nil
	}

	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fmt.Errorf("parse int32 %q: %w", raw, err)
	}

	*target = int32(value)

	return nil
}

func setFloat64FromFlag(target *float64, raw string) error {
	if raw == "" {
		*target = 0

		return nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", raw, err)
	}

	*target = value

	return nil
}
