package flags

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/devantler-tech/msail/pkg/ui/timer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// TimingFlagName is the name of the persistent flag that enables per-activity
// timing output.
const TimingFlagName = "timing"

var (
	// ErrNilCommand is returned when a flag lookup receives a nil command.
	ErrNilCommand = errors.New("command is nil")

	// ErrTimingFlagNotFound is returned when the timing flag is not registered
	// on the command or any of its parents.
	ErrTimingFlagNotFound = errors.New("timing flag not found")
)

// IsTimingEnabled reports whether the timing flag is set on the command, its
// persistent flags, or a parent's persistent flags.
func IsTimingEnabled(cmd *cobra.Command) (bool, error) {
	if cmd == nil {
		return false, ErrNilCommand
	}

	flag := lookupTimingFlag(cmd)
	if flag == nil {
		return false, ErrTimingFlagNotFound
	}

	enabled, err := strconv.ParseBool(flag.Value.String())
	if err != nil {
		return false, fmt.Errorf("failed to parse %s flag value: %w", TimingFlagName, err)
	}

	return enabled, nil
}

// MaybeTimer returns the timer when timing output is enabled on the command,
// and nil otherwise. Handlers pass the result to notify so timing lines only
// appear when requested.
func MaybeTimer(cmd *cobra.Command, tmr timer.Timer) timer.Timer {
	if cmd == nil || tmr == nil {
		return nil
	}

	enabled, err := IsTimingEnabled(cmd)
	if err != nil || !enabled {
		return nil
	}

	return tmr
}

// lookupTimingFlag finds the timing flag on the command. Cobra only merges
// persistent flags into Flags() during execution, so the local, persistent,
// and inherited flag sets are checked explicitly.
func lookupTimingFlag(cmd *cobra.Command) *pflag.Flag {
	flag := cmd.Flags().Lookup(TimingFlagName)
	if flag != nil {
		return flag
	}

	flag = cmd.PersistentFlags().Lookup(TimingFlagName)
	if flag != nil {
		return flag
	}

	return cmd.InheritedFlags().Lookup(TimingFlagName)
}
