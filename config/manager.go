package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const envPrefix = "ACCOUNTD_"

var (
	configFilePaths = []string{
		"/etc/lumeweb/accountd/config.yaml",
		"/etc/lumeweb/accountd/config.yml",
		"$HOME/.lumeweb/accountd/config.yaml",
		"$HOME/.lumeweb/accountd/config.yml",
		"./accountd.yaml",
		"./accountd.yml",
	}

	// Well-known variables kept for compatibility with existing deployments.
	envKeys = map[string]string{
		"PORT":              "core.port",
		"CONNECTION_STRING": "core.db.dsn",
		"JWT_SECRET_KEY":    "core.auth.jwt_secret",
		"JWT_EXPIRES_IN":    "core.auth.jwt_expires_in",
		"EMAIL":             "core.mail.username",
		"EMAIL_PASSWORD":    "core.mail.password",
	}

	errConfigFileNotFound = errors.New("config file not found")
)

var _ Manager = (*ManagerDefault)(nil)

type ManagerDefault struct {
	config     *koanf.Koanf
	root       *Config
	configFile string
	changes    bool
	logger     *zap.Logger
}

func NewManager() (*ManagerDefault, error) {
	k, configFile, err := newConfig()
	if err != nil && !errors.Is(err, errConfigFileNotFound) {
		return nil, err
	}

	return &ManagerDefault{
		config:     k,
		configFile: configFile,
		logger:     zap.NewNop(),
	}, nil
}

func (m *ManagerDefault) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m.logger = logger
}

func (m *ManagerDefault) hooks() []mapstructure.DecodeHookFunc {
	return []mapstructure.DecodeHookFunc{
		expiryHook(),
		mapstructure.StringToSliceHookFunc(","),
	}
}

func (m *ManagerDefault) Init() error {
	root := &Config{}

	err := m.setDefaultsForObject(&root.Core, "core")
	if err != nil {
		return err
	}

	err = m.maybeSave()
	if err != nil {
		return err
	}

	merged := koanf.New(".")
	if err = merged.Merge(m.config); err != nil {
		return err
	}

	// Environment is layered on top of the file but never written back to it.
	if err = merged.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return err
	}

	err = merged.UnmarshalWithConf("", root, koanf.UnmarshalConf{
		Tag: "mapstructure",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.ComposeDecodeHookFunc(m.hooks()...),
			Metadata:         nil,
			Result:           root,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return err
	}

	if err = root.Core.DB.resolveDSN(); err != nil {
		return err
	}

	if root.Core.Mail.From == "" {
		root.Core.Mail.From = root.Core.Mail.Sender()
	}

	err = m.validateObject(root)
	if err != nil {
		return err
	}

	m.root = root

	return nil
}

// envValue maps a variable to its config key. Unknown and empty variables are
// dropped.
func envValue(key string, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}

	return envKey(key), value
}

func envKey(key string) string {
	if mapped, ok := envKeys[key]; ok {
		return mapped
	}

	if rest, ok := strings.CutPrefix(key, envPrefix); ok && rest != "" {
		return strings.ReplaceAll(strings.ToLower(rest), "__", ".")
	}

	return ""
}

func (m *ManagerDefault) setDefaultsForObject(obj any, prefix string) error {
	objValue := reflect.ValueOf(obj)
	objType := reflect.TypeOf(obj)

	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
		objType = objType.Elem()
	}

	if setter, ok := obj.(Defaults); ok {
		err := m.applyDefaults(setter, prefix)
		if err != nil {
			return err
		}
	}

	for i := 0; i < objValue.NumField(); i++ {
		field := objValue.Field(i)
		fieldType := objType.Field(i)

		if !field.CanInterface() {
			continue
		}

		newPrefix := prefix
		if tag := fieldType.Tag.Get("mapstructure"); tag != "" && tag != "-" {
			if newPrefix != "" {
				newPrefix += "."
			}
			newPrefix += tag
		}

		switch {
		case field.Kind() == reflect.Struct:
			if err := m.setDefaultsForObject(field.Addr().Interface(), newPrefix); err != nil {
				return err
			}
		case field.Kind() == reflect.Ptr && fieldType.Type.Elem().Kind() == reflect.Struct:
			if field.IsNil() {
				field.Set(reflect.New(fieldType.Type.Elem()))
			}
			if err := m.setDefaultsForObject(field.Interface(), newPrefix); err != nil {
				return err
			}
		}
	}

	return nil
}

func (m *ManagerDefault) validateObject(obj any) error {
	objValue := reflect.ValueOf(obj)

	if objValue.Kind() == reflect.Ptr {
		if objValue.IsNil() {
			return nil
		}
		objValue = objValue.Elem()
	}

	if validator, ok := obj.(Validator); ok {
		err := validator.Validate()
		if err != nil {
			return err
		}
	}

	for i := 0; i < objValue.NumField(); i++ {
		field := objValue.Field(i)

		if !field.CanInterface() {
			continue
		}

		switch {
		case field.Kind() == reflect.Struct:
			if err := m.validateObject(field.Addr().Interface()); err != nil {
				return err
			}
		case field.Kind() == reflect.Ptr && !field.IsNil() && field.Elem().Kind() == reflect.Struct:
			if err := m.validateObject(field.Interface()); err != nil {
				return err
			}
		}
	}

	return nil
}

func (m *ManagerDefault) applyDefaults(setter Defaults, prefix string) error {
	for key, value := range setter.Defaults() {
		fullKey := key
		if prefix != "" {
			fullKey = fmt.Sprintf("%s.%s", prefix, key)
		}

		if m.config.Exists(fullKey) {
			continue
		}

		if err := m.config.Set(fullKey, value); err != nil {
			return err
		}

		m.changes = true
	}

	return nil
}

// maybeSave only persists defaults when a config file is in use; env-only
// deployments are left untouched.
func (m *ManagerDefault) maybeSave() error {
	if !m.changes || m.configFile == "" {
		return nil
	}

	data, err := m.config.Marshal(yaml.Parser())
	if err != nil {
		return err
	}

	err = os.MkdirAll(path.Dir(m.configFile), 0755)
	if err != nil {
		return err
	}

	err = os.WriteFile(m.configFile, data, 0600)
	if err != nil {
		return err
	}

	m.logger.Info("Wrote config defaults", zap.String("file", m.configFile))
	m.changes = false

	return nil
}

func (m *ManagerDefault) Config() *Config {
	return m.root
}

func (m *ManagerDefault) Save() error {
	m.changes = true
	return m.maybeSave()
}

func (m *ManagerDefault) ConfigFile() string {
	return m.configFile
}

func (m *ManagerDefault) ConfigDir() string {
	if m.configFile != "" {
		return path.Dir(m.configFile)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "."
	}

	return wd
}

func newConfig() (*koanf.Koanf, string, error) {
	k := koanf.New(".")

	configFile := findConfigFile()
	if configFile == "" {
		return k, "", errConfigFileNotFound
	}

	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, "", err
	}

	return k, configFile, nil
}

func findConfigFile() string {
	found, _ := lo.Find(lo.Map(configFilePaths, func(p string, _ int) string {
		return os.ExpandEnv(p)
	}), func(p string) bool {
		info, err := os.Stat(p)
		return err == nil && !info.IsDir()
	})

	return found
}
