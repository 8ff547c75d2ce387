package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"ledger/config"
	"ledger/database"
	"ledger/logging"
	"ledger/router"
	"ledger/service"
)

const version = "1.0.0"

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println("账务系统 v" + version)
		return
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fatal("加载配置失败", err)
	}
	logging.Setup(cfg.Log)

	// 命令行参数覆盖端口配置
	if port != "" {
		// 自动添加冒号前缀
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		slog.Info("命令行指定端口", "port", port)
	}

	// 打印配置信息
	config.PrintConfig()

	// 初始化数据库
	if err := database.Init(cfg); err != nil {
		fatal("数据库初始化失败", err)
	}

	l, rep := service.Build(database.GetDB(), cfg.Ledger)
	r := router.SetupRouter(cfg, l, rep)

	slog.Info("账务系统已启动",
		"api", fmt.Sprintf("http://localhost%s/api/v1/", cfg.Server.Port),
		"health", fmt.Sprintf("http://localhost%s/health", cfg.Server.Port),
		"version", version)

	if err := r.Run(cfg.Server.Port); err != nil {
		fatal("服务器启动失败", err)
	}
}
