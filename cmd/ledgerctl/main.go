// ledgerctl 账务系统运维命令行：对账、现金余额、还款计划预览、月供提醒与导出
package main

import (
	"fmt"
	"log/slog"
	"os"

	"ledger/config"
	"ledger/database"
	"ledger/logging"
	"ledger/service"

	"github.com/joho/godotenv"
)

// openApp 加载配置并连接数据库
func openApp(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	// 命令输出走 stdout，日志写 stderr
	slog.SetDefault(logging.New(cfg.Log, os.Stderr))
	if err := database.Init(cfg); err != nil {
		return nil, err
	}
	l, rep := service.Build(database.GetDB(), cfg.Ledger)
	return &app{cfg: cfg, ledger: l, reporter: rep}, nil
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(openApp).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
