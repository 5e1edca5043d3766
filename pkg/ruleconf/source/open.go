package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"katydid-common-validation/pkg/ruleconf"
	"katydid-common-validation/pkg/settings"
)

// ErrUnknownContract 配置来源类型未知
var ErrUnknownContract = errors.New("unknown config contract")

// 来源类型
const (
	ContractJSON  = "json"
	ContractYAML  = "yaml"
	ContractXML   = "xml"
	ContractSQL   = "sql"
	ContractRedis = "redis"
)

// Open 按配置打开模型配置源和规则参数源
// 数据库、Redis 连接只在读取期间使用，返回前关闭
func Open(ctx context.Context, s *settings.Settings) (ruleconf.ModelSource, ruleconf.ArgumentSource, error) {
	if s == nil {
		s = settings.Default()
	}

	var db *gorm.DB
	sqlDB := func() (*gorm.DB, error) {
		if db != nil {
			return db, nil
		}
		var err error
		db, err = OpenDB(s.SQLDriver, s.SQLDSN)
		return db, err
	}
	defer func() {
		if db != nil {
			if raw, err := db.DB(); err == nil {
				_ = raw.Close()
			}
		}
	}()

	models, err := openModels(ctx, s, sqlDB)
	if err != nil {
		return nil, nil, err
	}
	args, err := openArguments(ctx, s, sqlDB)
	if err != nil {
		return nil, nil, err
	}
	return models, args, nil
}

func openModels(ctx context.Context, s *settings.Settings, sqlDB func() (*gorm.DB, error)) (ruleconf.ModelSource, error) {
	switch s.ModelsContract {
	case ContractJSON, ContractYAML, ContractXML:
		return NewFileModelSourceAs(s.ModelsContract, s.ModelsSrc)
	case ContractSQL:
		db, err := sqlDB()
		if err != nil {
			return nil, err
		}
		return NewSQLModelSource(ctx, db)
	default:
		return nil, fmt.Errorf("%w: models %q", ErrUnknownContract, s.ModelsContract)
	}
}

func openArguments(ctx context.Context, s *settings.Settings, sqlDB func() (*gorm.DB, error)) (ruleconf.ArgumentSource, error) {
	switch s.ValuesContract {
	case ContractJSON, ContractYAML, ContractXML:
		return NewFileArgumentSourceAs(s.ValuesContract, s.ValuesSrc)
	case ContractSQL:
		db, err := sqlDB()
		if err != nil {
			return nil, err
		}
		return NewSQLArgumentSource(ctx, db)
	case ContractRedis:
		client := redis.NewClient(&redis.Options{Addr: s.RedisAddr})
		defer client.Close()
		return NewRedisArgumentSource(ctx, client, s.RedisKey)
	default:
		return nil, fmt.Errorf("%w: values %q", ErrUnknownContract, s.ValuesContract)
	}
}

// NewProvider 按配置读取来源并构建 Provider
func NewProvider(ctx context.Context, s *settings.Settings, logger *zap.Logger) (*ruleconf.Provider, error) {
	if s == nil {
		s = settings.Default()
	}
	models, args, err := Open(ctx, s)
	if err != nil {
		return nil, err
	}

	opts := []ruleconf.Option{ruleconf.WithLogger(logger)}
	if s.LastWriteWins {
		opts = append(opts, ruleconf.WithLastWriteWins())
	}
	return ruleconf.NewProvider(models, args, opts...)
}
