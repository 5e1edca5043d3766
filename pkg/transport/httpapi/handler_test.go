package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-validation/pkg/ruleconf"
	"katydid-common-validation/pkg/validation"
)

type company struct {
	Id   *int   `json:"id"`
	Name string `json:"name"`
}

type businessUnit struct {
	Name string `json:"name"`
}

func newTestRepo(t *testing.T) *validation.Repo {
	t.Helper()
	models := &ruleconf.ValidationModelConfig{
		Models: []*ruleconf.Model{
			ruleconf.NewModel("company", "",
				ruleconf.NewProperty("Id", ruleconf.NewRule(ruleconf.RuleRequired, "")),
				ruleconf.NewProperty("Name", ruleconf.NewRule(ruleconf.RuleMaxLength, "")),
			),
			ruleconf.NewModel("businessunit", "bu",
				ruleconf.NewProperty("Name", ruleconf.NewRule(ruleconf.RuleStringLength, "")),
			),
		},
	}
	args := &ruleconf.RuleArgumentConfig{
		RuleDefinitions: []ruleconf.RuleArgument{
			ruleconf.NewRuleArgument(ruleconf.RuleMaxLength, "", "company.Name.max=5"),
			// 缺少 maxlength，编译失败
			ruleconf.NewRuleArgument(ruleconf.RuleStringLength, "", "bu.Name.minlength=1"),
		},
	}
	p, err := ruleconf.NewProvider(ruleconf.StaticModels{Config: models}, ruleconf.StaticArguments{Config: args})
	require.NoError(t, err)
	return validation.NewRepo(p)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := newTestRepo(t)

	r := gin.New()
	NewHandler(repo).Register(r)
	r.POST("/companies", ValidateHandler[company](repo, ""))
	r.POST("/units", ValidateHandler[businessUnit](repo, "bu"))
	return r
}

func do(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Rules(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantRules  int
	}{
		{name: "模型规则", path: "/rules/company", wantStatus: http.StatusOK, wantRules: 2},
		{name: "模型名不区分大小写", path: "/rules/Company", wantStatus: http.StatusOK, wantRules: 2},
		{name: "未知模型", path: "/rules/order", wantStatus: http.StatusNotFound},
		{name: "未知别名", path: "/rules/businessunit/unit", wantStatus: http.StatusNotFound},
		{name: "别名规则参数错误", path: "/rules/businessunit/bu", wantStatus: http.StatusInternalServerError},
		{name: "所有规则含错误配置", path: "/rules", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus != http.StatusOK {
				var resp ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Error)
				return
			}

			var resp struct {
				Model string           `json:"model"`
				Rules []map[string]any `json:"rules"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "company", resp.Model)
			require.Len(t, resp.Rules, tt.wantRules)
			assert.Equal(t, "Required", resp.Rules[0]["type"])
			assert.Equal(t, "MaxLength", resp.Rules[1]["type"])
			assert.EqualValues(t, 5, resp.Rules[1]["max"])
		})
	}
}

func TestValidateHandler(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantProps  []string
	}{
		{name: "验证通过", path: "/companies", body: `{"id": 1, "name": "acme"}`, wantStatus: http.StatusNoContent},
		{name: "缺少必填", path: "/companies", body: `{"name": "acme"}`, wantStatus: http.StatusUnprocessableEntity, wantProps: []string{"Id"}},
		{name: "多个属性失败", path: "/companies", body: `{"name": "acme corp"}`, wantStatus: http.StatusUnprocessableEntity, wantProps: []string{"Id", "Name"}},
		{name: "请求体格式错误", path: "/companies", body: `{"id": "x"`, wantStatus: http.StatusBadRequest},
		{name: "规则配置错误", path: "/units", body: `{"name": "hq"}`, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, tt.path, []byte(tt.body))
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusNoContent {
				return
			}

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)

			var props []string
			for _, d := range resp.Errors {
				props = append(props, d.PropertyName)
			}
			assert.Equal(t, tt.wantProps, props)
		})
	}
}

func TestBindAndValidate_ReturnsBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newTestRepo(t)

	var got *company
	r := gin.New()
	r.POST("/companies", func(c *gin.Context) {
		body, ok := BindAndValidate[company](c, repo, "")
		if !ok {
			return
		}
		got = body
		c.JSON(http.StatusCreated, body)
	})

	w := do(r, http.MethodPost, "/companies", []byte(`{"id": 7, "name": "acme"}`))
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, got)
	require.NotNil(t, got.Id)
	assert.Equal(t, 7, *got.Id)
	assert.Equal(t, "acme", got.Name)
}

func TestHandler_Swagger(t *testing.T) {
	r := newRouter(t)

	w := do(r, http.MethodGet, "/rules/swagger/index.html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")

	w = do(r, http.MethodGet, "/rules/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Swagger string         `json:"swagger"`
		Info    map[string]any `json:"info"`
		Paths   map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "reve validation rules API", doc.Info["title"])
	assert.Contains(t, doc.Paths, "/rules")
	assert.Contains(t, doc.Paths, "/rules/{model}")
	assert.Contains(t, doc.Paths, "/rules/{model}/{alias}")

	// 文档路由不影响模型查询
	w = do(r, http.MethodGet, "/rules/company", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
