package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "리포트 생성",
	Long: `설정된 모든 리포트와 설명 시트를 생성합니다.

vault 파싱 또는 shared_contents 오류는 전체 실행을 중단합니다.
리포트 하나의 설정 오류는 해당 리포트만 건너뜁니다.

예시:
  mdh generate                     # 모든 리포트 생성
  mdh generate --report Games      # 한 리포트만 생성
  mdh generate --dry-run           # 파일을 쓰지 않고 결과 출력
  mdh generate --disk              # 디스크 스캔 동시 실행`,
	RunE: runGenerate,
}

var (
	generateDryRun bool
	generateReport string
	generateDisk   bool
)

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "파일을 쓰지 않고 결과만 출력")
	generateCmd.Flags().StringVar(&generateReport, "report", "", "지정한 제목의 리포트만 생성")
	generateCmd.Flags().BoolVar(&generateDisk, "disk", false, "디스크 스캔도 함께 실행")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	s, err := newSession(generateDryRun, generateReport)
	if err != nil {
		return err
	}
	defer s.Close()

	sum, disk, err := s.gen.RunAll(cmd.Context(), generateDisk)
	if err != nil {
		return err
	}

	if jsonOut {
		out := map[string]interface{}{"generation": sum}
		if disk != nil {
			out["disk"] = disk
			out["disk_summary"] = disk.Summary()
		}
		return printJSON(out)
	}

	if generateDryRun {
		for _, r := range sum.Reports {
			if r.Err != nil {
				continue
			}
			fmt.Fprintf(os.Stdout, "%s\n", boldStyle.Render("=== "+r.Title+" → "+r.Target+" ==="))
			os.Stdout.Write(r.Output)
			fmt.Println()
		}
		fmt.Fprintf(os.Stdout, "%s\n", boldStyle.Render("=== description sheet ==="))
		os.Stdout.Write(sum.Sheet)
		fmt.Println()
	}

	printSummary(sum)
	if disk != nil {
		printDiskSummary(disk)
	}
	return nil
}
