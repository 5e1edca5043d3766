package ruleconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgument(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ArgumentParts
	}{
		{
			name: "标准格式",
			raw:  "company.Name.max=50",
			want: ArgumentParts{FullName: "company.Name.max", Model: "company", Property: "Name", Parameter: "max", Value: "50"},
		},
		{
			name: "冒号作为值分隔符",
			raw:  "bu.Desc.pattern:^[a-z]+$",
			want: ArgumentParts{FullName: "bu.Desc.pattern", Model: "bu", Property: "Desc", Parameter: "pattern", Value: "^[a-z]+$"},
		},
		{
			name: "混合名称分隔符",
			raw:  "company_Name-min=1",
			want: ArgumentParts{FullName: "company_Name-min", Model: "company", Property: "Name", Parameter: "min", Value: "1"},
		},
		{
			name: "逗号和分号",
			raw:  "company,Id;min=0",
			want: ArgumentParts{FullName: "company,Id;min", Model: "company", Property: "Id", Parameter: "min", Value: "0"},
		},
		{
			name: "缺少值分隔符",
			raw:  "company.Name.max",
			want: ArgumentParts{FullName: "company.Name.max", Model: "company", Property: "Name", Parameter: "max"},
		},
		{
			name: "值中包含分隔符，只按第一个切分",
			raw:  "bu.Desc.pattern=a=b:c",
			want: ArgumentParts{FullName: "bu.Desc.pattern", Model: "bu", Property: "Desc", Parameter: "pattern", Value: "a=b:c"},
		},
		{
			name: "名称超过三段，只取前三段",
			raw:  "bu.Desc.custom.extra=1",
			want: ArgumentParts{FullName: "bu.Desc.custom.extra", Model: "bu", Property: "Desc", Parameter: "custom", Value: "1"},
		},
		{
			name: "段不足",
			raw:  "company=1",
			want: ArgumentParts{FullName: "company", Model: "company", Value: "1"},
		},
		{
			name: "空字符串",
			raw:  "",
			want: ArgumentParts{},
		},
		{
			name: "空段保留位置",
			raw:  "company..max=5",
			want: ArgumentParts{FullName: "company..max", Model: "company", Property: "", Parameter: "max", Value: "5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseArgument(tt.raw))
		})
	}
}

func TestParseArgument_RoundTrip(t *testing.T) {
	cases := [][4]string{
		{"M", "P", "Arg", "V"},
		{"company", "Name", "minlength", "1"},
		{"businessunit", "Desc", "pattern", `^\d{3}$`},
		{"x", "y", "z", ""},
	}
	for _, c := range cases {
		raw := EncodeArgument(c[0], c[1], c[2], c[3])
		parts := ParseArgument(raw)
		assert.Equal(t, c[0], parts.Model, raw)
		assert.Equal(t, c[1], parts.Property, raw)
		assert.Equal(t, c[2], parts.Parameter, raw)
		assert.Equal(t, c[3], parts.Value, raw)
	}
}

func TestRuleArgument_DerivedFields(t *testing.T) {
	arg := NewRuleArgument(RuleRange, "", "company.Id.min=1")

	assert.Equal(t, "company.Id.min", arg.FullName())
	assert.Equal(t, "company", arg.Model())
	assert.Equal(t, "Id", arg.Property())
	assert.Equal(t, "min", arg.Parameter())
	assert.Equal(t, "1", arg.Value())
}

func TestRuleType_Text(t *testing.T) {
	for _, typ := range RuleTypes() {
		text, err := typ.MarshalText()
		assert.NoError(t, err)

		var parsed RuleType
		assert.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, typ, parsed)
	}

	parsed, err := ParseRuleType("stringlength")
	assert.NoError(t, err)
	assert.Equal(t, RuleStringLength, parsed)

	parsed, err = ParseRuleType("5")
	assert.NoError(t, err)
	assert.Equal(t, RuleRange, parsed)

	_, err = ParseRuleType("Unique")
	assert.Error(t, err)

	_, err = RuleUnknown.MarshalText()
	assert.Error(t, err)
}
