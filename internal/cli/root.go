// Package cli 提供 reve 命令行：查看、检查规则配置
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"katydid-common-validation/pkg/logger"
	"katydid-common-validation/pkg/ruleconf"
	"katydid-common-validation/pkg/ruleconf/source"
	"katydid-common-validation/pkg/settings"
	"katydid-common-validation/pkg/validation"
)

// Version 构建时注入
var Version = "0.1.0"

// rootOptions 全局参数
type rootOptions struct {
	configFile string
	modelsSrc  string
	valuesSrc  string
	locale     string
	logLevel   string
}

// env 命令执行环境，PersistentPreRunE 中初始化
type env struct {
	settings *settings.Settings
	logger   *zap.Logger
}

type envKey struct{}

// NewRootCmd 创建根命令
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "reve",
		Short: "reve - externally configured model validation",
		Long: `reve 读取模型验证配置和规则参数，用于查看规则、检查配置是否能编译。

配置来源由 reve-models-contract / reve-values-contract 决定（json、yaml、xml、sql、redis），
可通过 --config 指定设置文件，或使用 REVE_* 环境变量覆盖。`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			e, err := opts.load()
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if e, ok := cmd.Context().Value(envKey{}).(*env); ok {
				_ = e.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "settings file (yaml/json/toml)")
	flags.StringVar(&opts.modelsSrc, "models", "", "model config file, overrides reve-models-src")
	flags.StringVar(&opts.valuesSrc, "values", "", "rule argument file, overrides reve-values-src")
	flags.StringVar(&opts.locale, "locale", "", "message locale (en, zh)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newRulesCommand())
	root.AddCommand(newCheckCommand())
	root.AddCommand(newParseCommand())
	return root
}

// Execute 执行根命令
func Execute(ctx context.Context, args []string) error {
	root := NewRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (o *rootOptions) load() (*env, error) {
	s, err := settings.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.modelsSrc != "" {
		s.ModelsSrc = o.modelsSrc
	}
	if o.valuesSrc != "" {
		s.ValuesSrc = o.valuesSrc
	}
	if o.locale != "" {
		s.Locale = o.locale
	}
	if o.logLevel != "" {
		s.LogLevel = o.logLevel
	}

	cfg := logger.DefaultConfig()
	cfg.Level = s.LogLevel
	cfg.File = s.LogFile
	cfg.Format = "console"
	log, err := logger.New(cfg)
	if err != nil {
		return nil, err
	}
	return &env{settings: s, logger: log}, nil
}

func envFrom(cmd *cobra.Command) (*env, error) {
	e, ok := cmd.Context().Value(envKey{}).(*env)
	if !ok {
		return nil, fmt.Errorf("command environment not initialized")
	}
	return e, nil
}

// provider 读取配置来源
func (e *env) provider(ctx context.Context) (*ruleconf.Provider, error) {
	return source.NewProvider(ctx, e.settings, e.logger)
}

// repo 读取配置来源并创建验证仓库
func (e *env) repo(ctx context.Context) (*validation.Repo, error) {
	p, err := e.provider(ctx)
	if err != nil {
		return nil, err
	}
	return validation.NewRepo(p,
		validation.WithLocale(e.settings.Locale),
		validation.WithLogger(e.logger),
	), nil
}
