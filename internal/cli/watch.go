package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/n0roo/mdhelper/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "vault 변경 감시 및 자동 재생성",
	Long: `vault를 감시하다가 문서가 바뀌면 리포트를 다시 생성합니다.
생성된 리포트 파일의 변경은 무시합니다. Ctrl+C로 종료합니다.`,
	RunE: runWatch,
}

var watchDebounce time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "변경 후 재생성까지 대기 시간")
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession(false, "")
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parser := s.gen.Parser()
	w, err := watch.New(watch.Options{
		Root:      parser.Root(),
		Extension: parser.Extension(),
		Ignored:   parser.Ignored,
		Exclude:   s.gen.Targets(),
		Debounce:  watchDebounce,
		Logger:    logger.Named("watch"),
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	regenerate := func(reason string) {
		sum, err := s.gen.Run(ctx)
		if err != nil {
			logger.Error("generation failed", zap.String("reason", reason), zap.Error(err))
			return
		}
		fmt.Printf("%s %s  reports: %d  failed: %d  entries: %d\n",
			mutedStyle.Render(time.Now().Format("15:04:05")), reason,
			len(sum.Reports), sum.Failed(), sum.Entries())
	}

	regenerate("initial")
	w.Start(ctx)
	fmt.Printf("%s %s\n", okStyle.Render("watching"), parser.Root())

	for ev := range w.Events() {
		reason := filepath.Base(ev.Paths[0])
		if len(ev.Paths) > 1 {
			reason = fmt.Sprintf("%s (+%d)", reason, len(ev.Paths)-1)
		}
		regenerate(reason)
	}
	return nil
}
