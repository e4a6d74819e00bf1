package cli

import (
	"github.com/n0roo/mdhelper/internal/tui"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"tui"},
	Short:   "대시보드 TUI 실행",
	Long:    `리포트를 생성하고 결과를 터미널 대시보드로 보여줍니다. r로 재생성합니다.`,
	RunE:    runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	s, err := newSession(false, "")
	if err != nil {
		return err
	}
	defer s.Close()

	var hist tui.HistoryFunc
	if s.store != nil {
		hist = s.store.Recent
	}
	return tui.Run(s.gen, hist, s.gen.Parser().Root())
}
