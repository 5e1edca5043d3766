package source

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"katydid-common-validation/pkg/ruleconf"
)

// ============================================================================
// 表结构
// ============================================================================

// ModelRuleRow reve_model_rules 表的一行：模型 + 属性 + 规则
// RuleType 为空的行只声明属性，Property 也为空的行只声明模型
type ModelRuleRow struct {
	ID           uint   `gorm:"primaryKey"`
	Model        string `gorm:"size:128;not null;index:idx_reve_model"`
	Alias        string `gorm:"size:128;index:idx_reve_model"`
	Property     string `gorm:"size:128;not null"`
	RuleType     string `gorm:"size:32"`
	RuleName     string `gorm:"size:128"`
	ErrorMessage string `gorm:"size:512"`
	Technical    string `gorm:"size:512"`
	Friendly     string `gorm:"size:512"`
	Ordinal      int    `gorm:"not null;default:0"`
}

// TableName 实现 gorm Tabler 接口
func (ModelRuleRow) TableName() string {
	return "reve_model_rules"
}

// RuleArgumentRow reve_rule_arguments 表的一行
type RuleArgumentRow struct {
	ID       uint   `gorm:"primaryKey"`
	Rule     string `gorm:"size:1024;not null"`
	Name     string `gorm:"size:128"`
	RuleType string `gorm:"size:32;not null"`
	Ordinal  int    `gorm:"not null;default:0"`
}

// TableName 实现 gorm Tabler 接口
func (RuleArgumentRow) TableName() string {
	return "reve_rule_arguments"
}

// ============================================================================
// 连接
// ============================================================================

// OpenDB 按驱动名打开数据库：sqlite、mysql、postgres
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	return db, nil
}

// Migrate 创建配置表
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(&ModelRuleRow{}, &RuleArgumentRow{})
}

// ============================================================================
// 读取
// ============================================================================

// NewSQLModelSource 读取 reve_model_rules，按 ordinal、id 排序后还原模型层级
func NewSQLModelSource(ctx context.Context, db *gorm.DB) (ruleconf.StaticModels, error) {
	var rows []ModelRuleRow
	if err := db.WithContext(ctx).Order("ordinal, id").Find(&rows).Error; err != nil {
		return ruleconf.StaticModels{}, fmt.Errorf("query %s: %w", ModelRuleRow{}.TableName(), err)
	}

	cfg, err := modelsFromRows(rows)
	if err != nil {
		return ruleconf.StaticModels{}, err
	}
	return ruleconf.StaticModels{Config: cfg}, nil
}

// NewSQLArgumentSource 读取 reve_rule_arguments
func NewSQLArgumentSource(ctx context.Context, db *gorm.DB) (ruleconf.StaticArguments, error) {
	var rows []RuleArgumentRow
	if err := db.WithContext(ctx).Order("ordinal, id").Find(&rows).Error; err != nil {
		return ruleconf.StaticArguments{}, fmt.Errorf("query %s: %w", RuleArgumentRow{}.TableName(), err)
	}

	cfg := &ruleconf.RuleArgumentConfig{RuleDefinitions: make([]ruleconf.RuleArgument, 0, len(rows))}
	for _, row := range rows {
		typ, err := ruleconf.ParseRuleType(row.RuleType)
		if err != nil {
			return ruleconf.StaticArguments{}, fmt.Errorf("rule argument %d: %w", row.ID, err)
		}
		cfg.RuleDefinitions = append(cfg.RuleDefinitions, ruleconf.NewRuleArgument(typ, row.Name, row.Rule))
	}
	return ruleconf.StaticArguments{Config: cfg}, nil
}

// modelsFromRows 按首次出现顺序分组：(模型, 别名) → 属性 → 规则
func modelsFromRows(rows []ModelRuleRow) (*ruleconf.ValidationModelConfig, error) {
	cfg := &ruleconf.ValidationModelConfig{}
	models := make(map[string]*ruleconf.Model)
	properties := make(map[string]*ruleconf.Property)

	for _, row := range rows {
		modelKey := row.Model + "\x00" + row.Alias
		m, ok := models[modelKey]
		if !ok {
			m = ruleconf.NewModel(row.Model, row.Alias)
			models[modelKey] = m
			cfg.Models = append(cfg.Models, m)
		}

		// Property 为空的行只声明模型
		if row.Property == "" {
			continue
		}

		propKey := modelKey + "\x00" + row.Property
		prop, ok := properties[propKey]
		if !ok {
			prop = ruleconf.NewProperty(row.Property)
			properties[propKey] = prop
			m.Properties = append(m.Properties, prop)
		}

		if strings.TrimSpace(row.RuleType) == "" {
			continue
		}
		typ, err := ruleconf.ParseRuleType(row.RuleType)
		if err != nil {
			return nil, fmt.Errorf("model rule %d: %w", row.ID, err)
		}
		prop.Rules = append(prop.Rules,
			ruleconf.NewRule(typ, row.RuleName).WithMessages(row.ErrorMessage, row.Technical, row.Friendly))
	}
	return cfg, nil
}

// ============================================================================
// 写入（导入配置）
// ============================================================================

// SaveModels 把模型配置展开为行写入数据库
func SaveModels(ctx context.Context, db *gorm.DB, cfg *ruleconf.ValidationModelConfig) error {
	var rows []ModelRuleRow
	ordinal := 0
	for _, m := range cfg.Models {
		if m == nil {
			continue
		}
		if len(m.Properties) == 0 {
			rows = append(rows, ModelRuleRow{Model: m.Name, Alias: m.Alias, Ordinal: ordinal})
			ordinal++
			continue
		}
		for _, prop := range m.Properties {
			if prop == nil {
				continue
			}
			if len(prop.Rules) == 0 {
				rows = append(rows, ModelRuleRow{Model: m.Name, Alias: m.Alias, Property: prop.Name, Ordinal: ordinal})
				ordinal++
				continue
			}
			for _, rule := range prop.Rules {
				rows = append(rows, ModelRuleRow{
					Model:        m.Name,
					Alias:        m.Alias,
					Property:     prop.Name,
					RuleType:     rule.Type.String(),
					RuleName:     rule.Name,
					ErrorMessage: rule.ErrorMessage,
					Technical:    rule.TechnicalDescription,
					Friendly:     rule.FriendlyDescription,
					Ordinal:      ordinal,
				})
				ordinal++
			}
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(rows, 100).Error
}

// SaveArguments 写入规则参数
func SaveArguments(ctx context.Context, db *gorm.DB, cfg *ruleconf.RuleArgumentConfig) error {
	rows := make([]RuleArgumentRow, 0, len(cfg.RuleDefinitions))
	for i, arg := range cfg.RuleDefinitions {
		rows = append(rows, RuleArgumentRow{Rule: arg.Rule, Name: arg.Name, RuleType: arg.Type.String(), Ordinal: i})
	}
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(rows, 100).Error
}
