package workspace

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/devantler-tech/msail/pkg/apis/workspace/v1alpha1"
	"github.com/devantler-tech/msail/pkg/fsutil/configmanager"
	"github.com/devantler-tech/msail/pkg/ui/notify"
	"github.com/devantler-tech/msail/pkg/ui/timer"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ConfigFileName is the workspace config file name without extension.
const ConfigFileName = "msail"

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "MSAIL"

// ConfigManager implements configuration management for MSail v1alpha1.Workspace
// configurations.
type ConfigManager struct {
	Viper           *viper.Viper
	fieldSelectors  []FieldSelector[v1alpha1.Workspace]
	Config          *v1alpha1.Workspace // Exposed config property for direct access
	configLoaded    bool                // Track if config has been actually loaded
	configFileFound bool                // Track if a config file was found and read
	Writer          io.Writer           // Writer for output notifications
	command         *cobra.Command      // Associated Cobra command for flag introspection
}

// Compile-time interface compliance verification.
var _ configmanager.ConfigManager[v1alpha1.Workspace] = (*ConfigManager)(nil)

// NewConfigManager creates a new configuration manager with the specified field selectors.
// Initializes Viper with all configuration including paths and environment handling.
func NewConfigManager(
	writer io.Writer,
	fieldSelectors ...FieldSelector[v1alpha1.Workspace],
) *ConfigManager {
	viperInstance := InitializeViper()
	config := v1alpha1.NewWorkspace()

	manager := &ConfigManager{
		Viper:          viperInstance,
		fieldSelectors: fieldSelectors,
		Config:         config,
		configLoaded:   false,
		Writer:         writer,
	}

	return manager
}

// NewCommandConfigManager constructs a ConfigManager bound to the provided Cobra command.
// It registers the supplied field selectors, binds flags from struct fields, and writes
// output to the command's standard output writer.
func NewCommandConfigManager(
	cmd *cobra.Command,
	selectors []FieldSelector[v1alpha1.Workspace],
) *ConfigManager {
	manager := NewConfigManager(cmd.OutOrStdout(), selectors...)
	manager.command = cmd
	manager.AddFlagsFromFields(cmd)

	return manager
}

// InitializeViper creates a Viper instance configured for workspace config files.
// The config file is msail.yaml in the working directory; environment variables
// prefixed with MSAIL_ override file values.
func InitializeViper() *viper.Viper {
	viperInstance := viper.New()
	viperInstance.SetConfigName(ConfigFileName)
	viperInstance.SetConfigType("yaml")
	viperInstance.AddConfigPath(".")
	viperInstance.SetEnvPrefix(EnvPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viperInstance.AutomaticEnv()

	return viperInstance
}

// Load loads the configuration with the specified options.
// Returns the loaded config, either freshly loaded or previously cached.
func (m *ConfigManager) Load(opts configmanager.LoadOptions) (*v1alpha1.Workspace, error) {
	return m.loadConfigWithOptions(opts)
}

// LoadConfig loads the configuration from files and environment variables.
// Returns the loaded config (either freshly loaded or previously cached) and an error
// if loading failed. Configuration priority: defaults < config file < environment
// variables < flags. If timer is provided, timing information will be included in the
// success notification.
func (m *ConfigManager) LoadConfig(tmr timer.Timer) (*v1alpha1.Workspace, error) {
	return m.loadConfigWithOptions(configmanager.LoadOptions{Timer: tmr})
}

// LoadConfigSilent loads the configuration without outputting notifications.
// Returns the loaded config, either freshly loaded or previously cached.
func (m *ConfigManager) LoadConfigSilent() (*v1alpha1.Workspace, error) {
	return m.loadConfigWithOptions(configmanager.LoadOptions{Silent: true})
}

// LoadConfigFromFlagsOnly loads configuration from flags and defaults only, ignoring
// on-disk config files. No notifications are emitted during the loading process.
func (m *ConfigManager) LoadConfigFromFlagsOnly() (*v1alpha1.Workspace, error) {
	return m.loadConfigWithOptions(configmanager.LoadOptions{
		Silent:           true,
		IgnoreConfigFile: true,
	})
}

// loadConfigWithOptions is the internal implementation behind the Load variants.
func (m *ConfigManager) loadConfigWithOptions(
	opts configmanager.LoadOptions,
) (*v1alpha1.Workspace, error) {
	if !opts.Silent {
		m.notifyLoadingStart()
	}

	if m.configLoaded {
		if !opts.Silent {
			m.notifyConfigReused()
		}

		return m.Config, nil
	}

	if !opts.Silent {
		m.notifyLoadingConfig()
	}

	if !opts.IgnoreConfigFile {
		err := m.readConfig(opts.Silent)
		if err != nil {
			return nil, err
		}
	}

	flagOverrides := m.captureChangedFlagValues()

	err := m.unmarshalAndApplyDefaults()
	if err != nil {
		return nil, err
	}

	err = m.applyFlagOverrides(flagOverrides)
	if err != nil {
		return nil, err
	}

	m.Config.SetDefaults()

	if !opts.SkipValidation {
		err = m.validateConfig()
		if err != nil {
			return nil, err
		}
	}

	if !opts.Silent {
		m.notifyLoadingComplete(opts.Timer)
	}

	m.configLoaded = true

	return m.Config, nil
}

func (m *ConfigManager) readConfig(silent bool) error {
	err := m.Viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		m.configFileFound = false
		if !silent {
			m.notifyUsingDefaults()
		}
	} else {
		m.configFileFound = true
		if !silent {
			m.notifyConfigFound()
		}
	}

	return nil
}

func (m *ConfigManager) unmarshalAndApplyDefaults() error {
	decoderConfig := func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			metav1DurationDecodeHook(),
		)
	}

	// Reset TypeMeta fields only if a config file was found so validation can
	// catch incorrect values from config files, while preserving defaults when
	// loading from environment variables only.
	if m.configFileFound {
		m.Config.APIVersion = ""
		m.Config.Kind = ""
	}

	err := m.Viper.Unmarshal(m.Config, decoderConfig)
	if err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Apply field selector defaults for empty fields
	for _, fieldSelector := range m.fieldSelectors {
		fieldPtr := fieldSelector.Selector(m.Config)
		if fieldPtr != nil && isFieldEmpty(fieldPtr) {
			setFieldValue(fieldPtr, fieldSelector.DefaultValue)
		}
	}

	return nil
}

func (m *ConfigManager) captureChangedFlagValues() map[string]string {
	if m.command == nil {
		return nil
	}

	flags := m.command.Flags()
	overrides := make(map[string]string)

	flags.Visit(func(f *pflag.Flag) {
		overrides[f.Name] = f.Value.String()
	})

	return overrides
}

func (m *ConfigManager) applyFlagOverrides(overrides map[string]string) error {
	if overrides == nil {
		return nil
	}

	for _, selector := range m.fieldSelectors {
		fieldPtr := selector.Selector(m.Config)
		if fieldPtr == nil {
			continue
		}

		flagName := m.GenerateFlagName(fieldPtr)

		value, ok := overrides[flagName]
		if !ok {
			continue
		}

		err := setFieldValueFromFlag(fieldPtr, value)
		if err != nil {
			return fmt.Errorf("failed to apply flag override for %s: %w", flagName, err)
		}
	}

	return nil
}

func (m *ConfigManager) validateConfig() error {
	err := m.Config.Validate()
	if err != nil {
		notify.WriteMessage(notify.Message{
			Type:    notify.ErrorType,
			Content: "%s",
			Args:    []any{err.Error()},
			Writer:  m.Writer,
		})

		return fmt.Errorf("invalid workspace configuration: %w", err)
	}

	return nil
}

func (m *ConfigManager) notifyLoadingStart() {
	notify.WriteMessage(notify.Message{
		Type:    notify.TitleType,
		Content: "Load config...",
		Emoji:   "⏳",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyConfigReused() {
	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "config already loaded, reusing existing config",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyLoadingConfig() {
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "loading msail config",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyUsingDefaults() {
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "using default config",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyConfigFound() {
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "'%s' found",
		Args:    []any{m.Viper.ConfigFileUsed()},
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyLoadingComplete(tmr timer.Timer) {
	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "config loaded",
		Timer:   tmr,
		Writer:  m.Writer,
	})
}

// metav1DurationDecodeHook decodes duration strings like "5m" into metav1.Duration
// values during unmarshalling.
func metav1DurationDecodeHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(metav1.Duration{}) {
			return data, nil
		}

		raw, ok := data.(string)
		if !ok {
			return data, nil
		}

		duration, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", raw, err)
		}

		return metav1.Duration{Duration: duration}, nil
	}
}

// isFieldEmpty checks if a field pointer points to an empty/zero value.
func isFieldEmpty(fieldPtr any) bool {
	if fieldPtr == nil {
		return true
	}

	fieldVal := reflect.ValueOf(fieldPtr)
	if fieldVal.Kind() != reflect.Ptr || fieldVal.IsNil() {
		return true
	}

	fieldVal = fieldVal.Elem()

	return fieldVal.IsZero()
}

// setFieldValue assigns a default value to the field behind fieldPtr, converting
// the value to the field type when needed. Nil defaults and incompatible types
// are ignored.
func setFieldValue(fieldPtr any, value any) {
	if fieldPtr == nil || value == nil {
		return
	}

	target := reflect.ValueOf(fieldPtr)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return
	}

	target = target.Elem()

	source := reflect.ValueOf(value)
	if !source.Type().AssignableTo(target.Type()) {
		if !source.Type().ConvertibleTo(target.Type()) {
			return
		}

		source = source.Convert(target.Type())
	}

	target.Set(source)
}
