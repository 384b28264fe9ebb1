package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/k-negishi/discord-calendar-notifier/internal/app"
	"github.com/k-negishi/discord-calendar-notifier/internal/config"
	"github.com/k-negishi/discord-calendar-notifier/internal/gateway"
)

// 終了コード
const (
	exitOK        = 0
	exitRejected  = 1
	exitConfig    = 2
	exitProducer  = 3
	exitTransport = 4
	exitFailure   = 5
)

// missingWebhookURLMessage DISCORD_WEBHOOK_URL 未設定時に標準エラーへ出力するメッセージ
const missingWebhookURLMessage = "Missing DISCORD_WEBHOOK_URL environment variable."

// cliFlags コマンドライン引数
type cliFlags struct {
	baseDir      string
	envFile      string
	producerPath string
	dryRun       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run 設定読み込み → 予定取得 → 整形 → 送信 を1回だけ実行し、終了コードを返す
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	level := new(slog.LevelVar)
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	flags, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}

	cfg, err := config.Load(ctx, config.Options{
		BaseDir:      flags.baseDir,
		EnvFile:      flags.envFile,
		ProducerPath: flags.producerPath,
		DryRun:       flags.dryRun,
	})
	if err != nil {
		if errors.Is(err, config.ErrMissingWebhookURL) {
			fmt.Fprintln(stderr, missingWebhookURLMessage)
		} else {
			fmt.Fprintln(stderr, err)
		}
		return exitConfig
	}
	level.Set(cfg.LogLevel)

	uc, err := app.NewNotifyTodayUseCase(ctx, cfg, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCode(err)
	}

	result, err := uc.Execute(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCode(err)
	}

	if !cfg.DryRun {
		fmt.Fprintf(stdout, "Posted. HTTP %d\n", result.StatusCode)
	}
	return exitOK
}

// exitCode エラー種別を終了コードに変換
func exitCode(err error) int {
	var (
		producerErr  *gateway.ProducerError
		deliveryErr  *gateway.DeliveryError
		transportErr *gateway.TransportError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &producerErr):
		return exitProducer
	case errors.As(err, &transportErr):
		return exitTransport
	case errors.As(err, &deliveryErr):
		return exitRejected
	case errors.Is(err, config.ErrMissingWebhookURL), errors.Is(err, config.ErrInvalidWebhookURL):
		return exitConfig
	default:
		return exitFailure
	}
}

func parseFlags(args []string, stderr io.Writer) (cliFlags, error) {
	var f cliFlags

	fs := flag.NewFlagSet("discord-calendar-notifier", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.baseDir, "base", defaultBaseDir(), "Directory that relative env file and producer paths are resolved against")
	fs.StringVar(&f.envFile, "env-file", "", "Env file merged over the environment (default "+config.DefaultEnvFile+")")
	fs.StringVar(&f.producerPath, "producer", "", "Producer executable (default $PRODUCER_PATH or "+config.DefaultProducerPath+")")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Print the rendered message instead of posting it")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		return cliFlags{}, errors.New("unexpected arguments")
	}
	return f, nil
}

// defaultBaseDir 実行ファイルが置かれたディレクトリ
func defaultBaseDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
