package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"katydid-common-validation/pkg/ruleconf"
)

// NewRedisArgumentSource 读取 Redis 列表中的规则参数
// 每个元素是一个 JSON 编码的 RuleArgument，列表顺序即参数顺序
func NewRedisArgumentSource(ctx context.Context, client redis.Cmdable, key string) (ruleconf.StaticArguments, error) {
	members, err := client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return ruleconf.StaticArguments{}, fmt.Errorf("redis lrange %s: %w", key, err)
	}

	cfg := &ruleconf.RuleArgumentConfig{RuleDefinitions: make([]ruleconf.RuleArgument, 0, len(members))}
	for i, member := range members {
		var arg ruleconf.RuleArgument
		if err := json.Unmarshal([]byte(member), &arg); err != nil {
			return ruleconf.StaticArguments{}, fmt.Errorf("redis %s[%d]: %w", key, i, err)
		}
		cfg.RuleDefinitions = append(cfg.RuleDefinitions, arg)
	}
	return ruleconf.StaticArguments{Config: cfg}, nil
}

// PushArguments 把规则参数追加到 Redis 列表
func PushArguments(ctx context.Context, client redis.Cmdable, key string, cfg *ruleconf.RuleArgumentConfig) error {
	if len(cfg.RuleDefinitions) == 0 {
		return nil
	}

	values := make([]any, 0, len(cfg.RuleDefinitions))
	for _, arg := range cfg.RuleDefinitions {
		data, err := json.Marshal(arg)
		if err != nil {
			return fmt.Errorf("encode rule argument %q: %w", arg.Rule, err)
		}
		values = append(values, string(data))
	}
	return client.RPush(ctx, key, values...).Err()
}
