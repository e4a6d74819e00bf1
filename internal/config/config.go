package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the mdhelper configuration file (JSON or YAML)
type Config struct {
	Global  GlobalConfig  `yaml:"global"`
	Disk    DiskConfig    `yaml:"disk"`
	Git     GitConfig     `yaml:"git"`
	History HistoryConfig `yaml:"history"`

	path string
}

// GlobalConfig holds the vault and report definitions
type GlobalConfig struct {
	BaseFolder       string      `yaml:"base_folder"`
	Ignore           []string    `yaml:"ignore"`
	Extension        string      `yaml:"extension"`
	InProgressTag    string      `yaml:"in_progress_tag"`
	DescriptionSheet SheetConfig `yaml:"description_sheet"`

	// 키 순서를 유지하기 위해 노드 그대로 보관
	Reports        yaml.Node `yaml:"reports"`
	SharedContents yaml.Node `yaml:"shared_contents"`
}

// SheetConfig names the cross-report description sheet
type SheetConfig struct {
	Title  string `yaml:"title"`
	Target string `yaml:"target"`
}

// DiskConfig holds the disk duplicate scan settings
type DiskConfig struct {
	Folders           []string `yaml:"folders"`
	IgnoreDuplicateOn []string `yaml:"ignoreDuplicateOn"`
	SuffixToCheck     []string `yaml:"suffixToCheck"`
	TargetAll         string   `yaml:"targetAll"`
	TargetErrors      string   `yaml:"targetErrors"`
}

// Enabled reports whether a disk scan is configured
func (d DiskConfig) Enabled() bool {
	return len(d.Folders) > 0 && d.TargetAll != "" && d.TargetErrors != ""
}

// GitConfig holds the auto-commit settings
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	Message     string `yaml:"message"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// HistoryConfig holds the run history settings
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// IsEnabled reports whether runs are recorded (default true)
func (h HistoryConfig) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// DBPath returns the history database path
func (h HistoryConfig) DBPath() string {
	if os.Getenv(EnvDB) == "" && h.Path != "" {
		return expandHome(h.Path)
	}
	return DefaultHistoryPath()
}

// Defaults
const (
	DefaultExtension     = ".md"
	DefaultInProgressTag = "PLAY/INPROGRESS"
	DefaultCommitMessage = "mdhelper: regenerate reports"
	DefaultAuthorName    = "mdhelper"
	DefaultAuthorEmail   = "mdhelper@localhost"
)

// Load reads the configuration file at path. An empty path uses
// DefaultConfigPath. MDH_VAULT overrides global.base_folder.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("설정 파일이 없습니다: %s", path)
		}
		return nil, fmt.Errorf("설정 파일 읽기 실패: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes a configuration document and applies defaults and
// environment overrides.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("설정 파일 파싱 실패: %w", err)
	}

	if vault := os.Getenv(EnvVault); vault != "" {
		cfg.Global.BaseFolder = vault
	}
	cfg.Global.BaseFolder = expandHome(cfg.Global.BaseFolder)

	if cfg.Global.Extension == "" {
		cfg.Global.Extension = DefaultExtension
	}
	if cfg.Global.InProgressTag == "" {
		cfg.Global.InProgressTag = DefaultInProgressTag
	}
	if cfg.Git.Message == "" {
		cfg.Git.Message = DefaultCommitMessage
	}
	if cfg.Git.AuthorName == "" {
		cfg.Git.AuthorName = DefaultAuthorName
	}
	if cfg.Git.AuthorEmail == "" {
		cfg.Git.AuthorEmail = DefaultAuthorEmail
	}

	return &cfg, nil
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// Validate checks the settings required by a generation pass
func (c *Config) Validate() error {
	if c.Global.BaseFolder == "" {
		return fmt.Errorf("global.base_folder가 설정되지 않았습니다")
	}
	if _, err := c.ReportNodes(); err != nil {
		return err
	}
	return nil
}

// ReportNodes returns the report definitions in configured order
func (c *Config) ReportNodes() ([]*yaml.Node, error) {
	node := &c.Global.Reports
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("global.reports는 목록이어야 합니다")
	}
	return node.Content, nil
}

// ReportTitle returns the title of a report node without resolving it
func ReportTitle(node *yaml.Node) string {
	return scalarValue(node, "title")
}

// ReportTarget returns the target of a report node without resolving it
func ReportTarget(node *yaml.Node) string {
	return scalarValue(node, "target")
}

func scalarValue(node *yaml.Node, key string) string {
	if node == nil || node.Kind != yaml.MappingNode {
		return ""
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key && node.Content[i+1].Kind == yaml.ScalarNode {
			return node.Content[i+1].Value
		}
	}
	return ""
}

// SharedContents returns the shared filter library node, nil if absent
func (c *Config) SharedContents() *yaml.Node {
	if c.Global.SharedContents.Kind == 0 {
		return nil
	}
	return &c.Global.SharedContents
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
