package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleJSON = `{
	"global": {
		"base_folder": "/vault",
		"ignore": [".obsidian", "Templates"],
		"description_sheet": {"title": "# Reports", "target": "Reports.md"},
		"reports": [
			{"title": "Games", "target": "Games.md", "count": {"Zelda": {"tag_condition": ["Z"]}, "Mario": {"tag_condition": ["M"]}}},
			{"title": "Notes", "target": "Notes.md"}
		],
		"shared_contents": {"tags": {"done": ["PLAY/DONE"]}}
	},
	"disk": {"folders": ["/data"], "targetAll": "All.md", "targetErrors": "Errors.md"},
	"history": {"enabled": false}
}`

func TestParse_JSON(t *testing.T) {
	t.Setenv(EnvVault, "")

	cfg, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("파싱 실패: %v", err)
	}

	if cfg.Global.BaseFolder != "/vault" {
		t.Errorf("base_folder = %s", cfg.Global.BaseFolder)
	}
	if len(cfg.Global.Ignore) != 2 {
		t.Errorf("ignore = %v", cfg.Global.Ignore)
	}
	if cfg.Global.Extension != DefaultExtension {
		t.Errorf("extension default = %s", cfg.Global.Extension)
	}
	if cfg.Global.InProgressTag != DefaultInProgressTag {
		t.Errorf("in_progress_tag default = %s", cfg.Global.InProgressTag)
	}
	if cfg.Global.DescriptionSheet.Target != "Reports.md" {
		t.Errorf("description_sheet.target = %s", cfg.Global.DescriptionSheet.Target)
	}
	if !cfg.Disk.Enabled() {
		t.Error("disk scan이 활성화되어야 함")
	}
	if cfg.History.IsEnabled() {
		t.Error("history가 비활성화되어야 함")
	}
	if cfg.Git.Message != DefaultCommitMessage {
		t.Errorf("git.message default = %s", cfg.Git.Message)
	}

	reports, err := cfg.ReportNodes()
	if err != nil {
		t.Fatalf("reports 조회 실패: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
	if ReportTitle(reports[0]) != "Games" || ReportTarget(reports[1]) != "Notes.md" {
		t.Errorf("report 순서가 다름: %s, %s", ReportTitle(reports[0]), ReportTarget(reports[1]))
	}

	// count 키 순서 유지 확인
	count := reports[0].Content[5]
	if count.Content[0].Value != "Zelda" || count.Content[2].Value != "Mario" {
		t.Errorf("count 순서가 유지되지 않음: %s, %s", count.Content[0].Value, count.Content[2].Value)
	}

	if cfg.SharedContents() == nil {
		t.Error("shared_contents가 비어 있음")
	}
}

func TestParse_YAML(t *testing.T) {
	t.Setenv(EnvVault, "")

	cfg, err := Parse([]byte(`
global:
  base_folder: /notes
  extension: .markdown
history:
  path: /tmp/h.db
`))
	if err != nil {
		t.Fatalf("파싱 실패: %v", err)
	}
	if cfg.Global.Extension != ".markdown" {
		t.Errorf("extension = %s", cfg.Global.Extension)
	}
	if !cfg.History.IsEnabled() {
		t.Error("history 기본값은 활성화")
	}
	reports, err := cfg.ReportNodes()
	if err != nil || reports != nil {
		t.Errorf("reports가 없어야 함: %v %v", reports, err)
	}
	if cfg.SharedContents() != nil {
		t.Error("shared_contents가 없어야 함")
	}
}

func TestParse_VaultOverride(t *testing.T) {
	t.Setenv(EnvVault, "/override")

	cfg, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("파싱 실패: %v", err)
	}
	if cfg.Global.BaseFolder != "/override" {
		t.Errorf("base_folder = %s, want /override", cfg.Global.BaseFolder)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv(EnvVault, "")

	cfg, err := Parse([]byte(`{"global": {"reports": []}}`))
	if err != nil {
		t.Fatalf("파싱 실패: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("base_folder 없이 통과하면 안 됨")
	}

	cfg, err = Parse([]byte(`{"global": {"base_folder": "/v", "reports": {"a": 1}}}`))
	if err != nil {
		t.Fatalf("파싱 실패: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("reports가 목록이 아니면 실패해야 함")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvVault, "")
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0644); err != nil {
		t.Fatalf("파일 쓰기 실패: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("로드 실패: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %s", cfg.Path())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("없는 파일은 실패해야 함")
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv(EnvConfig, "/etc/mdh.json")
	if DefaultConfigPath() != "/etc/mdh.json" {
		t.Errorf("MDH_CONFIG 무시됨: %s", DefaultConfigPath())
	}

	t.Setenv(EnvConfig, "")
	if filepath.Base(DefaultConfigPath()) != ConfigFileName {
		t.Errorf("기본 경로 = %s", DefaultConfigPath())
	}

	t.Setenv(EnvDB, "")
	h := HistoryConfig{Path: "/tmp/custom.db"}
	if h.DBPath() != "/tmp/custom.db" {
		t.Errorf("history.path 무시됨: %s", h.DBPath())
	}
	t.Setenv(EnvDB, "/tmp/env.db")
	if h.DBPath() != "/tmp/env.db" {
		t.Errorf("MDH_DB 무시됨: %s", h.DBPath())
	}
}
