package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
)

const (
	// SourceCommand 外部プロデューサー実行ファイルからイベントを取得
	SourceCommand = "command"
	// SourceGoogle Google Calendar APIからイベントを取得
	SourceGoogle = "google"

	DefaultEnvFile        = "env/discord_hook.env"
	DefaultProducerPath   = "build/calendar"
	DefaultWebhookTimeout = 15 * time.Second

	defaultWebhookURLParam  = "/discord-calendar-notifier/webhook-url"
	defaultGoogleCredsParam = "/discord-calendar-notifier/google-creds"
)

var (
	// ErrMissingWebhookURL DISCORD_WEBHOOK_URL が未設定または空
	ErrMissingWebhookURL = errors.New("missing DISCORD_WEBHOOK_URL")
	// ErrInvalidWebhookURL DISCORD_WEBHOOK_URL が http(s) の URL として解釈できない
	ErrInvalidWebhookURL = errors.New("invalid DISCORD_WEBHOOK_URL")
)

// SSMParameterGetter Parameter Store からパラメータを取得するクライアント
type SSMParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Options コマンドライン引数から渡される設定
// 空の項目は環境変数またはデフォルト値で補完する
type Options struct {
	BaseDir      string
	EnvFile      string
	ProducerPath string
	DryRun       bool
}

// Config アプリケーション設定構造体
type Config struct {
	// Discord Webhook設定
	WebhookURL     string
	WebhookTimeout time.Duration

	// イベント取得元
	EventSource  string
	ProducerPath string

	// Google Calendar設定（EventSource が google の場合のみ使用）
	GoogleCredentials string
	CalendarID        string
	Timezone          *time.Location

	// その他設定
	LogLevel slog.Level
	DryRun   bool

	// AWS関連（Parameter Store 使用時のみ）
	ssmClient SSMParameterGetter
}

// newSSMClient AWS設定からSSMクライアントを作成
var newSSMClient = func(ctx context.Context) (SSMParameterGetter, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("AWS設定の読み込みに失敗しました: %w", err)
	}
	return ssm.NewFromConfig(awsConfig), nil
}

// Load envファイルと環境変数から設定を読み込み
func Load(ctx context.Context, opts Options) (*Config, error) {
	loadEnvFile(resolvePath(opts.BaseDir, firstNonEmpty(opts.EnvFile, DefaultEnvFile)))

	cfg := &Config{
		WebhookURL:        getEnvOrDefault("DISCORD_WEBHOOK_URL", ""),
		EventSource:       strings.ToLower(getEnvOrDefault("EVENT_SOURCE", defaultEventSource())),
		ProducerPath:      resolvePath(opts.BaseDir, firstNonEmpty(opts.ProducerPath, getEnvOrDefault("PRODUCER_PATH", DefaultProducerPath))),
		GoogleCredentials: getEnvOrDefault("GOOGLE_CREDENTIALS", ""),
		CalendarID:        getEnvOrDefault("CALENDAR_ID", "primary"),
		DryRun:            opts.DryRun,
	}

	var err error
	if cfg.LogLevel, err = parseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO")); err != nil {
		return nil, err
	}
	if cfg.Timezone, err = loadTimezone(getEnvOrDefault("TIMEZONE", "Local")); err != nil {
		return nil, err
	}
	if cfg.WebhookTimeout, err = parseTimeout(getEnvOrDefault("WEBHOOK_TIMEOUT", "")); err != nil {
		return nil, err
	}

	switch cfg.EventSource {
	case SourceCommand:
	case SourceGoogle:
		if cfg.GoogleCredentials == "" {
			creds, err := cfg.loadFromParameterStore(ctx, "GOOGLE_CREDS_PARAM", defaultGoogleCredsParam)
			if err != nil {
				return nil, fmt.Errorf("Google認証情報の取得に失敗しました: %w", err)
			}
			cfg.GoogleCredentials = creds
		}
		if cfg.GoogleCredentials == "" {
			return nil, fmt.Errorf("GOOGLE_CREDENTIALS環境変数が設定されていません")
		}
	default:
		return nil, fmt.Errorf("EVENT_SOURCE の値が不正です: %q", cfg.EventSource)
	}

	// ドライランでは送信しないため Webhook URL は不要
	if cfg.DryRun {
		return cfg, nil
	}

	if cfg.WebhookURL == "" {
		webhookURL, err := cfg.loadFromParameterStore(ctx, "DISCORD_WEBHOOK_URL_PARAM", defaultWebhookURLParam)
		if err != nil {
			return nil, fmt.Errorf("Webhook URLの取得に失敗しました: %w", err)
		}
		cfg.WebhookURL = webhookURL
	}
	if cfg.WebhookURL == "" {
		return nil, ErrMissingWebhookURL
	}
	if err := validateWebhookURL(cfg.WebhookURL); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateWebhookURL http(s) スキームとホストを持つ URL か確認
// URL は機密情報のためエラーメッセージには含めない
func validateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: URLとして解析できません", ErrInvalidWebhookURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: スキームは http または https である必要があります", ErrInvalidWebhookURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: ホストが設定されていません", ErrInvalidWebhookURL)
	}
	return nil
}

// loadEnvFile envファイルの値で既存の環境変数を上書き
func loadEnvFile(path string) {
	if err := godotenv.Overload(path); err != nil {
		// envファイルが存在しない場合はエラーにしない
		slog.Warn("envファイルを読み込めませんでした", slog.String("path", path), slog.Any("error", err))
	}
}

// loadFromParameterStore Parameter Store から機密情報を読み込み
// paramKey の環境変数でパラメータ名を指定する。未指定かつ Lambda 環境でもない場合は空文字を返す
func (c *Config) loadFromParameterStore(ctx context.Context, paramKey, defaultParam string) (string, error) {
	paramName := getEnvOrDefault(paramKey, "")
	if paramName == "" {
		if !IsLambda() {
			return "", nil
		}
		paramName = defaultParam
	}

	if c.ssmClient == nil {
		client, err := newSSMClient(ctx)
		if err != nil {
			return "", err
		}
		c.ssmClient = client
	}

	value, err := c.getParameter(ctx, paramName, true)
	if err != nil {
		return "", fmt.Errorf("Parameter Storeからの設定読み込みに失敗しました: %w", err)
	}
	return strings.TrimSpace(value), nil
}

// getParameter Parameter Storeから指定されたパラメータを取得
func (c *Config) getParameter(ctx context.Context, paramName string, withDecryption bool) (string, error) {
	input := &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(withDecryption),
	}

	result, err := c.ssmClient.GetParameter(ctx, input)
	if err != nil {
		return "", fmt.Errorf("パラメータ %s の取得に失敗しました: %w", paramName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil || *result.Parameter.Value == "" {
		return "", fmt.Errorf("パラメータ %s が空の値です", paramName)
	}

	return *result.Parameter.Value, nil
}

// IsLambda AWS Lambda環境かどうか判定
func IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// defaultEventSource Lambda にはプロデューサーが存在しないため Google Calendar を既定にする
func defaultEventSource() string {
	if IsLambda() {
		return SourceGoogle
	}
	return SourceCommand
}

func parseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL の値が不正です: %q", value)
	}
	return level, nil
}

func loadTimezone(name string) (*time.Location, error) {
	if name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("タイムゾーン %s の読み込みに失敗しました: %w", name, err)
	}
	return loc, nil
}

func parseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return DefaultWebhookTimeout, nil
	}
	timeout, err := time.ParseDuration(value)
	if err != nil || timeout <= 0 {
		return 0, fmt.Errorf("WEBHOOK_TIMEOUT の値が不正です: %q", value)
	}
	return timeout, nil
}

// resolvePath 相対パスをベースディレクトリ基準で解決
func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// getEnvOrDefault 環境変数を取得し、存在しない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
