// Package config loads panel addresses, credentials and tunables from a
// settings file and the environment.
//
// The settings file may use the legacy INI layout:
//
//	[ip_list]
//	IP = 10.0.0.5 10.0.0.6
//
//	[authorization]
//	LOGIN = admin
//	PASSWD = secret
//
// or any format viper reads (YAML, TOML, JSON) with the keys panels, login
// and password. Tunables (timeout, card_delay, page_pause, concurrency,
// snapshot) may appear at the top level of either layout. CARDSYNC_* environment
// variables override file values.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/agentstation/cardsync/pkg/constants"
	"github.com/agentstation/cardsync/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CARDSYNC"

// Setting keys.
const (
	KeyPanels      = "panels"
	KeyLogin       = "login"
	KeyPassword    = "password"
	KeyTimeout     = "timeout"
	KeyCardDelay   = "card_delay"
	KeyPagePause   = "page_pause"
	KeyConcurrency = "concurrency"
	KeySnapshot    = "snapshot"
)

// Settings is the resolved configuration of a run.
type Settings struct {
	Panels      []string      `json:"panels" yaml:"panels"`
	Login       string        `json:"login" yaml:"login"`
	Password    string        `json:"-" yaml:"-"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	CardDelay   time.Duration `json:"card_delay" yaml:"card_delay"`
	PagePause   time.Duration `json:"page_pause" yaml:"page_pause"`
	Concurrency int           `json:"concurrency" yaml:"concurrency"`
	Snapshot    string        `json:"snapshot" yaml:"snapshot"`

	// File is the settings file that was read, if any
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// Load reads settings from path. An empty path looks for settings.ini in the
// working directory and carries on without a file when there is none; an
// explicit path that cannot be read is an error.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		if _, err := os.Stat(constants.DefaultSettingsFile); err == nil {
			path = constants.DefaultSettingsFile
		}
	}

	if path != "" {
		if err := readFile(v, path); err != nil {
			if !explicit && os.IsNotExist(err) {
				path = ""
			} else {
				return nil, errors.NewConfigError("settings", "reading "+path, err)
			}
		}
	}

	s := &Settings{
		Panels:      splitPanels(v.Get(KeyPanels)),
		Login:       v.GetString(KeyLogin),
		Password:    v.GetString(KeyPassword),
		Timeout:     v.GetDuration(KeyTimeout),
		CardDelay:   v.GetDuration(KeyCardDelay),
		PagePause:   v.GetDuration(KeyPagePause),
		Concurrency: v.GetInt(KeyConcurrency),
		Snapshot:    v.GetString(KeySnapshot),
		File:        path,
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyTimeout, constants.DefaultHTTPTimeout)
	v.SetDefault(KeyCardDelay, constants.CardCreateDelay)
	v.SetDefault(KeyPagePause, constants.PagePause)
	v.SetDefault(KeyConcurrency, constants.MaxConcurrentPanels)
	v.SetDefault(KeySnapshot, constants.DefaultSnapshotFile)
}

func readFile(v *viper.Viper, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".ini") {
		values, err := readINI(path)
		if err != nil {
			return err
		}
		return v.MergeConfigMap(values)
	}
	v.SetConfigFile(path)
	return v.ReadInConfig()
}

// readINI maps the legacy INI layout onto setting keys. Section and key
// names are case-insensitive.
func readINI(path string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	file, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return nil, errors.WrapParse("ini", path, err)
	}

	values := make(map[string]any)
	for _, key := range file.Section(ini.DefaultSection).Keys() {
		values[key.Name()] = key.Value()
	}
	for _, key := range file.Section("cardsync").Keys() {
		values[key.Name()] = key.Value()
	}
	if key, err := file.Section("ip_list").GetKey("ip"); err == nil {
		values[KeyPanels] = key.Value()
	}
	auth := file.Section("authorization")
	if key, err := auth.GetKey("login"); err == nil {
		values[KeyLogin] = key.Value()
	}
	if key, err := auth.GetKey("passwd"); err == nil {
		values[KeyPassword] = key.Value()
	}
	return values, nil
}

// splitPanels accepts a whitespace or comma separated string or a list.
func splitPanels(raw any) []string {
	var parts []string
	switch val := raw.(type) {
	case nil:
	case string:
		parts = []string{val}
	case []string:
		parts = val
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	}

	var panels []string
	seen := make(map[string]struct{})
	for _, part := range parts {
		for _, field := range strings.FieldsFunc(part, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}) {
			if _, dup := seen[field]; dup {
				continue
			}
			seen[field] = struct{}{}
			panels = append(panels, field)
		}
	}
	return panels
}

// Validate reports missing panels or credentials and out of range tunables.
func (s *Settings) Validate() error {
	if len(s.Panels) == 0 {
		return errors.NewConfigError("settings", "no panels configured (set [ip_list] IP or CARDSYNC_PANELS)", nil)
	}
	if s.Login == "" {
		return errors.NewConfigError("settings", "no login configured (set [authorization] LOGIN or CARDSYNC_LOGIN)", nil)
	}
	if s.Timeout <= 0 {
		return errors.NewValidationError(KeyTimeout, s.Timeout, "must be positive")
	}
	if s.CardDelay < 0 {
		return errors.NewValidationError(KeyCardDelay, s.CardDelay, "must not be negative")
	}
	if s.PagePause < 0 {
		return errors.NewValidationError(KeyPagePause, s.PagePause, "must not be negative")
	}
	if s.Concurrency < 1 {
		return errors.NewValidationError(KeyConcurrency, s.Concurrency, "must be at least 1")
	}
	return nil
}
