// =============================================================================
// TrailerFlow 主入口
// =============================================================================
// 从角色/场景分解文档生成预告片素材
//
// 使用方法:
//
//	trailerflow run --input breakdown.json                  # 角色参考图 + 场景视频
//	trailerflow run --config trailerflow.yaml --input b.yaml
//	trailerflow refs --input breakdown.json                 # 只生成角色参考图
//	trailerflow scenes --input breakdown.json               # 复用 refs/ 只生成场景
//	trailerflow check --input breakdown.json                # 离线校验
//	trailerflow version                                     # 显示版本信息
// =============================================================================

package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/trailerflow/config"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	os.Exit(dispatch(os.Args[1:], os.Stdout, os.Stderr))
}

func dispatch(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "run", "refs", "scenes":
		return runGenerate(args[0], args[1:], stdout, stderr)
	case "check":
		return runCheck(args[1:], stdout, stderr)
	case "version":
		printVersion(stdout)
		return 0
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "TrailerFlow %s\n", Version)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git Commit: %s\n", GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `TrailerFlow - trailer asset generator

Usage:
  trailerflow <command> [options]

Commands:
  run       Generate character references, then scene videos
  refs      Generate character references only
  scenes    Generate scene videos from references already in <output>/refs
  check     Validate a breakdown offline (no API calls)
  version   Show version information
  help      Show this help message

Options for 'run', 'refs' and 'scenes':
  --config <path>   Path to configuration file (YAML)
  --env-file <path> Dotenv file loaded before the environment (default .env)
  --input <path>    Breakdown document (.json, .yaml or .yml)
  --output <dir>    Output root, overrides output.root

Options for 'check':
  --input <path>    Breakdown document

Environment:
  TRAILERFLOW_IMAGE_API_KEY, TRAILERFLOW_VIDEO_API_KEY,
  TRAILERFLOW_CREDENTIALS_PROJECT_API_KEY, TRAILERFLOW_CREDENTIALS_SECRET_FILE

Examples:
  trailerflow check --input breakdown.json
  trailerflow run --config trailerflow.yaml --input breakdown.json --output ./out
  trailerflow scenes --input breakdown.json --output ./out
  trailerflow version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	// 解析日志级别
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	// 配置编码器
	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       encoding == "console",
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}
	return logger
}
