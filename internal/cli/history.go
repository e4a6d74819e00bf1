package cli

import (
	"fmt"

	"github.com/n0roo/mdhelper/internal/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "생성 실행 기록",
	Long:  `최근 리포트 생성 실행 기록을 출력합니다.`,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "실행 상세 조회",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "출력할 실행 수")
}

func openStore() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.IsEnabled() {
		return nil, fmt.Errorf("history가 비활성화되어 있습니다 (history.enabled)")
	}
	store, _, err := history.Open(cfg.History.DBPath())
	return store, err
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if jsonOut {
		data, err := store.ExportJSON(historyLimit)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	runs, err := store.Recent(historyLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println(mutedStyle.Render("실행 기록이 없습니다"))
		return nil
	}

	fmt.Printf("%s %d runs, %d failed, last %s\n\n", boldStyle.Render("History:"),
		stats.Runs, stats.Failed, stats.LastRunAt.Local().Format("2006-01-02 15:04:05"))
	for _, run := range runs {
		fmt.Printf("  %s  %s  %s  reports: %d  failed: %d  entries: %d  %s\n",
			mutedStyle.Render(shortID(run.ID)),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			statusText(run.Status),
			run.Reports, run.Failed, run.Entries,
			mutedStyle.Render(run.Duration().String()))
		if run.Error != "" {
			fmt.Printf("            %s\n", errStyle.Render(run.Error))
		}
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(args[0])
	if err != nil {
		return err
	}
	reports, err := store.Reports(run.ID)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{"run": run, "reports": reports})
	}

	fmt.Printf("%s %s\n", boldStyle.Render("Run:"), run.ID)
	fmt.Printf("  Vault:     %s\n", run.Vault)
	fmt.Printf("  Started:   %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("  Duration:  %s\n", run.Duration())
	fmt.Printf("  Status:    %s\n", statusText(run.Status))
	fmt.Printf("  Documents: %d  Tags: %d\n", run.Documents, run.Tags)
	if run.Error != "" {
		fmt.Printf("  Error:     %s\n", errStyle.Render(run.Error))
	}
	fmt.Println()
	for _, r := range reports {
		if r.Error != "" {
			fmt.Printf("  %s %-30s %s\n", errStyle.Render("✗"), r.Title, errStyle.Render(r.Error))
			continue
		}
		fmt.Printf("  %s %-30s %-40s %d entries\n", okStyle.Render("✓"), r.Title, r.Target, r.Entries)
	}
	return nil
}

func statusText(s history.Status) string {
	switch s {
	case history.StatusSuccess:
		return okStyle.Render(string(s))
	case history.StatusPartial:
		return warnStyle.Render(string(s))
	default:
		return errStyle.Render(string(s))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
