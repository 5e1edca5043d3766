// Package httpapi 通过 HTTP 暴露规则查询和请求体验证
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"katydid-common-validation/pkg/validation"
)

// RulesResponse 规则查询响应
type RulesResponse struct {
	Model string                      `json:"model,omitempty"`
	Alias string                      `json:"alias,omitempty"`
	Rules []validation.ValidationRule `json:"rules"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error  string                             `json:"error"`
	Errors []validation.ValidationErrorDetail `json:"errors,omitempty"`
}

// Handler 规则查询接口
type Handler struct {
	repo   *validation.Repo
	logger *zap.Logger
}

// Option Handler 选项
type Option func(*Handler)

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler 创建 Handler，repo 为 nil 时使用默认仓库
func NewHandler(repo *validation.Repo, opts ...Option) *Handler {
	if repo == nil {
		repo = validation.Default()
	}
	h := &Handler{repo: repo, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register 注册路由
//
//	GET /rules                 所有模型的规则
//	GET /rules/:model          模型的规则
//	GET /rules/:model/:alias   模型 + 别名的规则
//	GET /rules/swagger/*any    接口文档（index.html、doc.json）
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/rules")
	g.GET("", h.listAll)
	g.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(DocInstance)))
	g.GET("/:model", h.listModel)
	g.GET("/:model/:alias", h.listModel)
}

func (h *Handler) listAll(c *gin.Context) {
	rules, err := h.repo.AllRules()
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, RulesResponse{Rules: rules})
}

func (h *Handler) listModel(c *gin.Context) {
	name, alias := c.Param("model"), c.Param("alias")

	model := h.repo.Lookup(name, alias)
	if model == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "model not found"})
		return
	}

	rules, err := validation.DescribeModel(model)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, RulesResponse{Model: model.Name, Alias: model.Alias, Rules: rules})
}

func (h *Handler) fail(c *gin.Context, status int, err error) {
	h.logger.Warn("validation request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err))
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// ============================================================================
// 请求体验证
// ============================================================================

// BindAndValidate 绑定 JSON 请求体并按配置规则验证
// 失败时已写入响应（400 绑定失败、422 验证失败、500 配置错误），调用方直接返回即可
func BindAndValidate[T any](c *gin.Context, repo *validation.Repo, alias string) (*T, bool) {
	var body T
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return nil, false
	}

	res, err := repo.ValidateAlias(&body, alias)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, validation.ErrRuleParse) || errors.Is(err, validation.ErrPropertyNotFound) {
			msg = "validation configuration error"
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
		return nil, false
	}
	if res.IsError() {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "validation failed",
			Errors: res.Value(),
		})
		return nil, false
	}
	return &body, true
}

// ValidateHandler 返回只做验证的处理函数，验证通过时响应 204
func ValidateHandler[T any](repo *validation.Repo, alias string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := BindAndValidate[T](c, repo, alias); !ok {
			return
		}
		c.Status(http.StatusNoContent)
	}
}
