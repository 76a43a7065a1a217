package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/relief"
	ConfigFileName    = "relief.yml"
)

// ReliefConfig holds the server configuration
type ReliefConfig struct {
	// StoreHost is the PostgreSQL host every principal connects to
	StoreHost string `yaml:"store_host" json:"store_host" validate:"required,hostname|ip"`

	// StorePort is the PostgreSQL port
	StorePort int `yaml:"store_port" json:"store_port" validate:"min=1,max=65535"`

	// StoreDatabase is the database name
	StoreDatabase string `yaml:"store_database" json:"store_database" validate:"required"`

	// StoreSSLMode is passed through as sslmode
	StoreSSLMode string `yaml:"store_sslmode" json:"store_sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`

	// AnonymousUser is the store principal used when no session is established
	AnonymousUser string `yaml:"anonymous_user" json:"anonymous_user" validate:"required"`

	// AnonymousPassword is the password of the anonymous principal
	AnonymousPassword string `yaml:"anonymous_password" json:"-"`

	// AccountsFile is the YAML file of UI accounts
	AccountsFile string `yaml:"accounts_file" json:"accounts_file" validate:"required"`

	// SessionTTL is the session lifetime in seconds
	SessionTTL int `yaml:"session_ttl" json:"session_ttl" validate:"min=60"`

	// BindAddress is the listen address of the HTTP server
	BindAddress string `yaml:"bind_address" json:"bind_address" validate:"required,ip"`

	// Port is the listen port of the HTTP server
	Port int `yaml:"port" json:"port" validate:"min=1,max=65535"`

	// PoolConnections keeps one connection pool per principal instead of
	// dialing per operation
	PoolConnections bool `yaml:"pool_connections" json:"pool_connections"`

	// AuditOutput is where audit lines are written: stdout, stderr or off
	AuditOutput string `yaml:"audit_output" json:"audit_output" validate:"omitempty,oneof=stdout stderr off"`

	// AuditAppName is the APP-NAME of every audit line
	AuditAppName string `yaml:"audit_app_name" json:"audit_app_name" validate:"required,printascii,max=48"`

	// AuditHostname overrides the HOSTNAME of every audit line
	AuditHostname string `yaml:"audit_hostname" json:"audit_hostname" validate:"omitempty,hostname|ip"`

	// AuditUser is the store principal that saves audit entries; empty keeps
	// audit in the log only
	AuditUser string `yaml:"audit_user" json:"audit_user"`

	// AuditPassword is the password of the audit principal
	AuditPassword string `yaml:"audit_password" json:"-"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

var (
	globalConfig *ReliefConfig
	configMu     sync.RWMutex

	validate = validator.New()
)

// Get returns the global configuration, loading it if necessary
func Get() *ReliefConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

func newDefault() *ReliefConfig {
	return &ReliefConfig{
		StoreHost:     "localhost",
		StorePort:     5432,
		StoreDatabase: "relief",
		StoreSSLMode:  "disable",
		AnonymousUser: "relief_guest",
		AccountsFile:  "/etc/relief/accounts.yml",
		SessionTTL:    28800,
		BindAddress:   "127.0.0.1",
		Port:          8000,
		AuditOutput:   "stdout",
		AuditAppName:  "relief",
		sources:       make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*ReliefConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("RELIEF_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig ReliefConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"store_host", "store_port", "store_database", "store_sslmode",
		"anonymous_user", "anonymous_password", "accounts_file",
		"session_ttl", "bind_address", "port", "pool_connections",
		"audit_output", "audit_app_name", "audit_hostname", "audit_user", "audit_password",
	}
}

func (c *ReliefConfig) applyFileConfig(file *ReliefConfig) {
	if file.StoreHost != "" {
		c.StoreHost = file.StoreHost
		c.sources["store_host"] = "file"
	}
	if file.StorePort != 0 {
		c.StorePort = file.StorePort
		c.sources["store_port"] = "file"
	}
	if file.StoreDatabase != "" {
		c.StoreDatabase = file.StoreDatabase
		c.sources["store_database"] = "file"
	}
	if file.StoreSSLMode != "" {
		c.StoreSSLMode = file.StoreSSLMode
		c.sources["store_sslmode"] = "file"
	}
	if file.AnonymousUser != "" {
		c.AnonymousUser = file.AnonymousUser
		c.sources["anonymous_user"] = "file"
	}
	if file.AnonymousPassword != "" {
		c.AnonymousPassword = file.AnonymousPassword
		c.sources["anonymous_password"] = "file"
	}
	if file.AccountsFile != "" {
		c.AccountsFile = file.AccountsFile
		c.sources["accounts_file"] = "file"
	}
	if file.SessionTTL != 0 {
		c.SessionTTL = file.SessionTTL
		c.sources["session_ttl"] = "file"
	}
	if file.BindAddress != "" {
		c.BindAddress = file.BindAddress
		c.sources["bind_address"] = "file"
	}
	if file.Port != 0 {
		c.Port = file.Port
		c.sources["port"] = "file"
	}
	if file.PoolConnections {
		c.PoolConnections = true
		c.sources["pool_connections"] = "file"
	}
	fileString(c, "audit_output", file.AuditOutput, &c.AuditOutput)
	fileString(c, "audit_app_name", file.AuditAppName, &c.AuditAppName)
	fileString(c, "audit_hostname", file.AuditHostname, &c.AuditHostname)
	fileString(c, "audit_user", file.AuditUser, &c.AuditUser)
	fileString(c, "audit_password", file.AuditPassword, &c.AuditPassword)
}

func fileString(c *ReliefConfig, name, val string, dst *string) {
	if val != "" {
		*dst = val
		c.sources[name] = "file"
	}
}

func (c *ReliefConfig) applyEnvConfig() {
	c.envString("RELIEF_STORE_HOST", "store_host", &c.StoreHost)
	c.envInt("RELIEF_STORE_PORT", "store_port", &c.StorePort)
	c.envString("RELIEF_STORE_DATABASE", "store_database", &c.StoreDatabase)
	c.envString("RELIEF_STORE_SSLMODE", "store_sslmode", &c.StoreSSLMode)
	c.envString("RELIEF_ANONYMOUS_USER", "anonymous_user", &c.AnonymousUser)
	c.envString("RELIEF_ANONYMOUS_PASSWORD", "anonymous_password", &c.AnonymousPassword)
	c.envString("RELIEF_ACCOUNTS_FILE", "accounts_file", &c.AccountsFile)
	c.envInt("RELIEF_SESSION_TTL", "session_ttl", &c.SessionTTL)
	c.envString("RELIEF_BIND_ADDRESS", "bind_address", &c.BindAddress)
	c.envInt("PORT", "port", &c.Port)
	if val := os.Getenv("RELIEF_POOL_CONNECTIONS"); val != "" {
		c.PoolConnections = val == "true" || val == "1"
		c.sources["pool_connections"] = "environment"
	}
	c.envString("RELIEF_AUDIT_OUTPUT", "audit_output", &c.AuditOutput)
	c.envString("RELIEF_AUDIT_APP_NAME", "audit_app_name", &c.AuditAppName)
	c.envString("RELIEF_AUDIT_HOSTNAME", "audit_hostname", &c.AuditHostname)
	c.envString("RELIEF_AUDIT_USER", "audit_user", &c.AuditUser)
	c.envString("RELIEF_AUDIT_PASSWORD", "audit_password", &c.AuditPassword)
}

func (c *ReliefConfig) envString(env, name string, dst *string) {
	if val := os.Getenv(env); val != "" {
		*dst = val
		c.sources[name] = "environment"
	}
}

func (c *ReliefConfig) envInt(env, name string, dst *int) {
	if val := os.Getenv(env); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
			c.sources[name] = "environment"
		}
	}
}

// ConfigFilePath returns the path to the config file
func (c *ReliefConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *ReliefConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// SessionLifetime returns the session TTL as a duration
func (c *ReliefConfig) SessionLifetime() time.Duration {
	return time.Duration(c.SessionTTL) * time.Second
}

// ListenAddress returns host:port for the HTTP server
func (c *ReliefConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.Port)
}

// Validate validates the configuration
func (c *ReliefConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s value %q: failed %s", yamlName(fe.StructField()), fmt.Sprint(fe.Value()), fe.Tag())
		}
		return err
	}
	return nil
}

func yamlName(field string) string {
	switch field {
	case "StoreHost":
		return "store_host"
	case "StorePort":
		return "store_port"
	case "StoreDatabase":
		return "store_database"
	case "StoreSSLMode":
		return "store_sslmode"
	case "AnonymousUser":
		return "anonymous_user"
	case "AccountsFile":
		return "accounts_file"
	case "SessionTTL":
		return "session_ttl"
	case "BindAddress":
		return "bind_address"
	case "Port":
		return "port"
	case "AuditOutput":
		return "audit_output"
	case "AuditAppName":
		return "audit_app_name"
	case "AuditHostname":
		return "audit_hostname"
	}
	return strings.ToLower(field)
}

// Attributes returns all configuration attributes with their values and sources.
// Passwords are masked.
func (c *ReliefConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "store_host", Value: c.StoreHost, Source: c.Source("store_host")},
		{Name: "store_port", Value: strconv.Itoa(c.StorePort), Source: c.Source("store_port")},
		{Name: "store_database", Value: c.StoreDatabase, Source: c.Source("store_database")},
		{Name: "store_sslmode", Value: c.StoreSSLMode, Source: c.Source("store_sslmode")},
		{Name: "anonymous_user", Value: c.AnonymousUser, Source: c.Source("anonymous_user")},
		{Name: "anonymous_password", Value: mask(c.AnonymousPassword), Source: c.Source("anonymous_password")},
		{Name: "accounts_file", Value: c.AccountsFile, Source: c.Source("accounts_file")},
		{Name: "session_ttl", Value: strconv.Itoa(c.SessionTTL), Source: c.Source("session_ttl")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "pool_connections", Value: strconv.FormatBool(c.PoolConnections), Source: c.Source("pool_connections")},
		{Name: "audit_output", Value: c.AuditOutput, Source: c.Source("audit_output")},
		{Name: "audit_app_name", Value: c.AuditAppName, Source: c.Source("audit_app_name")},
		{Name: "audit_hostname", Value: c.AuditHostname, Source: c.Source("audit_hostname")},
		{Name: "audit_user", Value: c.AuditUser, Source: c.Source("audit_user")},
		{Name: "audit_password", Value: mask(c.AuditPassword), Source: c.Source("audit_password")},
	}
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// FormatText returns a text representation of the configuration
func (c *ReliefConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-36s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-36s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-36s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *ReliefConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
