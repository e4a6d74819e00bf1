package cli

import (
	"github.com/joho/godotenv"
	"github.com/n0roo/mdhelper/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	vaultPath  string
	verbose    bool
	jsonOut    bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "mdh",
	Short: "태그 기반 마크다운 리포트 생성기",
	Long: `mdh - 태그 기반 마크다운 리포트 생성기

vault의 마크다운 문서에서 태그를 수집하고, 설정 파일의 리포트 정의에 따라
요약 리포트를 생성합니다.

주요 기능:
  - 리포트 생성: 태그/경로 조건으로 문서를 분류해 마크다운 리포트 작성
  - 설명 시트: 모든 리포트의 필터 조건 요약
  - 디스크 스캔: 중복 파일/폴더 이름 검사
  - 감시 모드: vault 변경 시 자동 재생성
  - 실행 기록: 생성 이력 조회`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "설정 파일 경로 (기본: ~/.mdhelper/config.json, MDH_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&vaultPath, "vault", "", "vault 경로 (global.base_folder 대신 사용)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "상세 출력")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "JSON 출력")
}

func setup(cmd *cobra.Command, args []string) error {
	// .env는 없어도 됨
	_ = godotenv.Load()

	var err error
	if jsonOut {
		logger, err = logging.New(verbose)
	} else {
		logger, err = logging.Console(verbose)
	}
	return err
}

// IsVerbose returns verbose flag
func IsVerbose() bool {
	return verbose
}

// IsJSON returns json output flag
func IsJSON() bool {
	return jsonOut
}
