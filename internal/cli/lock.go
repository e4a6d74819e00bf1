package cli

import (
	"fmt"
	"time"

	"github.com/n0roo/mdhelper/internal/db"
	"github.com/n0roo/mdhelper/internal/lock"
	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "vault 잠금 관리",
	Long: `생성 중인 vault의 잠금을 조회하거나 정리합니다.

generate/watch/dashboard는 실행 중 vault를 잠그고, 다른 프로세스의
동시 생성을 막습니다. 비정상 종료로 남은 잠금은 일정 시간 후 자동으로 인수됩니다.`,
}

var lockListCmd = &cobra.Command{
	Use:   "list",
	Short: "잠금 목록",
	RunE:  runLockList,
}

var lockClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "모든 잠금 강제 해제",
	RunE:  runLockClear,
}

func init() {
	rootCmd.AddCommand(lockCmd)
	lockCmd.AddCommand(lockListCmd)
	lockCmd.AddCommand(lockClearCmd)
}

func openLockService() (*lock.Service, db.Database, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.History.IsEnabled() {
		return nil, nil, fmt.Errorf("잠금은 history DB를 사용합니다 (history.enabled)")
	}
	database, _, err := db.OpenAuto(cfg.History.DBPath())
	if err != nil {
		return nil, nil, err
	}
	return lock.NewService(database), database, nil
}

func runLockList(cmd *cobra.Command, args []string) error {
	svc, database, err := openLockService()
	if err != nil {
		return err
	}
	defer database.Close()

	locks, err := svc.List()
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(locks)
	}
	if len(locks) == 0 {
		fmt.Println(mutedStyle.Render("잠금이 없습니다"))
		return nil
	}
	for _, l := range locks {
		age := time.Since(l.AcquiredAt).Round(time.Second)
		fmt.Printf("  🔒 %s  %s  %s\n", l.Resource, l.Owner, mutedStyle.Render(age.String()))
	}
	return nil
}

func runLockClear(cmd *cobra.Command, args []string) error {
	svc, database, err := openLockService()
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := svc.Clear()
	if err != nil {
		return err
	}
	fmt.Printf("✅ %d개 잠금 해제\n", n)
	return nil
}
