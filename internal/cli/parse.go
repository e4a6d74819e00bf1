package cli

import (
	"fmt"

	"github.com/n0roo/mdhelper/internal/bloc"
	"github.com/n0roo/mdhelper/internal/config"
	"github.com/n0roo/mdhelper/internal/generator"
	"github.com/n0roo/mdhelper/internal/sheet"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "vault 파싱 (리포트 생성 없음)",
	Long:  `vault를 파싱해 문서 수, 태그 수, 진행 중인 문서를 출력합니다.`,
	RunE:  runParse,
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "vault 태그 목록",
	Long: `vault에서 발견된 태그를 출력합니다.

예시:
  mdh tags           # 모든 태그
  mdh tags --type    # TYPE/ 하위 값
  mdh tags --play    # PLAY/ 하위 값`,
	RunE: runTags,
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "설정된 리포트 목록 및 검증",
	Long:  `설정 파일의 리포트 정의를 불러와 오류가 있는지 확인합니다.`,
	RunE:  runReports,
}

var (
	tagsType bool
	tagsPlay bool
)

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(reportsCmd)

	tagsCmd.Flags().BoolVar(&tagsType, "type", false, "TYPE/ 하위 값만 출력")
	tagsCmd.Flags().BoolVar(&tagsPlay, "play", false, "PLAY/ 하위 값만 출력")
	tagsCmd.MarkFlagsMutuallyExclusive("type", "play")
}

func newParseGenerator() (*generator.Generator, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return generator.New(generator.Options{Config: cfg, Logger: logger})
}

func runParse(cmd *cobra.Command, args []string) error {
	g, err := newParseGenerator()
	if err != nil {
		return err
	}
	idx, err := g.Parse()
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"root":        idx.Root,
			"documents":   len(idx.Sorted),
			"tags":        len(idx.Tags),
			"in_progress": keys(idx.InProgress),
			"parsed_at":   idx.ParsedAt,
		})
	}

	fmt.Printf("%s %s\n", boldStyle.Render("Vault:"), idx.Root)
	fmt.Printf("  Documents: %d\n", len(idx.Sorted))
	fmt.Printf("  Tags:      %d\n", len(idx.Tags))
	if len(idx.InProgress) > 0 {
		fmt.Printf("\n%s\n", boldStyle.Render("In progress:"))
		for _, key := range keys(idx.InProgress) {
			fmt.Printf("  • %s\n", key)
		}
	}
	return nil
}

func runTags(cmd *cobra.Command, args []string) error {
	g, err := newParseGenerator()
	if err != nil {
		return err
	}
	idx, err := g.Parse()
	if err != nil {
		return err
	}

	tags := idx.Tags
	switch {
	case tagsType:
		tags = idx.TypeValues
	case tagsPlay:
		tags = idx.PlayValues
	}

	if jsonOut {
		return printJSON(tags)
	}
	for _, tag := range tags {
		fmt.Println(tag)
	}
	return nil
}

type reportCheck struct {
	Title  string `json:"title"`
	Target string `json:"target"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
}

func runReports(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lib, err := bloc.NewLibrary(cfg.SharedContents())
	if err != nil {
		return fmt.Errorf("shared_contents: %w", err)
	}
	nodes, err := cfg.ReportNodes()
	if err != nil {
		return err
	}

	var checks []reportCheck
	for _, node := range nodes {
		c := reportCheck{Title: config.ReportTitle(node), Target: config.ReportTarget(node)}
		if r, err := bloc.LoadReport(node, lib); err != nil {
			c.Error = err.Error()
		} else if r.Root != nil {
			c.Kind = r.Root.Kind.String()
		}
		checks = append(checks, c)
	}

	if jsonOut {
		return printJSON(checks)
	}

	if len(checks) == 0 {
		fmt.Println(mutedStyle.Render("설정된 리포트가 없습니다"))
		return nil
	}
	for _, c := range checks {
		if c.Error != "" {
			fmt.Printf("  %s %-30s %s\n", errStyle.Render("✗"), c.Title, errStyle.Render(c.Error))
			continue
		}
		fmt.Printf("  %s %-30s %-40s %s\n", okStyle.Render("✓"), c.Title, c.Target, mutedStyle.Render(c.Kind))
	}
	return nil
}

func keys(docs []*sheet.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Key)
	}
	return out
}
