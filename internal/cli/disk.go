package cli

import (
	"fmt"

	"github.com/n0roo/mdhelper/internal/diskscan"
	"github.com/spf13/cobra"
)

var diskCmd = &cobra.Command{
	Use:   "disk",
	Short: "디스크 중복 이름 검사",
	Long: `disk.folders 아래의 파일과 폴더 이름을 검사해 두 리포트를 생성합니다.

  targetAll:    말단 폴더 목록
  targetErrors: 중복 이름, 대소문자/특수문자만 다른 이름, 정리되지 않은 파일, 의심 파일`,
	RunE: runDisk,
}

var diskDryRun bool

func init() {
	rootCmd.AddCommand(diskCmd)
	diskCmd.Flags().BoolVar(&diskDryRun, "dry-run", false, "리포트를 쓰지 않고 요약만 출력")
}

func runDisk(cmd *cobra.Command, args []string) error {
	s, err := newSession(diskDryRun, "")
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.gen.ScanDisk(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"scan":    res,
			"summary": res.Summary(),
		})
	}
	printDiskSummary(res)
	return nil
}

func printDiskSummary(res *diskscan.Result) {
	s := res.Summary()
	fmt.Println()
	fmt.Printf("%s %d folders, %d files (%d unique folders, %d unique files)\n",
		boldStyle.Render("Disk:"), res.Global.Folders, res.Global.Files, res.Folders.Unique(), res.Files.Unique())

	line := func(n int, what string) {
		style := okStyle
		if n > 0 {
			style = warnStyle
		}
		fmt.Printf("  %s %s\n", style.Render(fmt.Sprintf("%4d", n)), what)
	}
	line(s.DuplicatedFolders, "duplicated folders")
	line(s.DuplicatedFiles, "duplicated files")
	line(s.UnsortedFiles, "unsorted files")
	line(s.SuspiciousFiles, "suspicious files")
}
