package httpapi

import "github.com/swaggo/swag"

// DocInstance 规则接口文档在 swag 中的注册名
const DocInstance = "reve"

// docTemplate 规则接口的 Swagger 2.0 文档
const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/rules": {
            "get": {
                "produces": ["application/json"],
                "summary": "所有模型的描述性规则",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RulesResponse"}},
                    "500": {"description": "规则配置错误", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/rules/{model}": {
            "get": {
                "produces": ["application/json"],
                "summary": "模型的描述性规则",
                "parameters": [
                    {"type": "string", "name": "model", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RulesResponse"}},
                    "404": {"description": "模型不存在", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "规则配置错误", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/rules/{model}/{alias}": {
            "get": {
                "produces": ["application/json"],
                "summary": "模型 + 别名的描述性规则",
                "parameters": [
                    {"type": "string", "name": "model", "in": "path", "required": true},
                    {"type": "string", "name": "alias", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RulesResponse"}},
                    "404": {"description": "模型不存在", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "规则配置错误", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "ValidationRule": {
            "type": "object",
            "properties": {
                "model": {"type": "string"},
                "property": {"type": "string"},
                "type": {"type": "string"},
                "technicalDescription": {"type": "string"},
                "friendlyDescription": {"type": "string"}
            },
            "additionalProperties": true
        },
        "RulesResponse": {
            "type": "object",
            "properties": {
                "model": {"type": "string"},
                "alias": {"type": "string"},
                "rules": {"type": "array", "items": {"$ref": "#/definitions/ValidationRule"}}
            }
        },
        "ValidationErrorDetail": {
            "type": "object",
            "properties": {
                "modelName": {"type": "string"},
                "propertyName": {"type": "string"},
                "value": {},
                "message": {"type": "string"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/ValidationErrorDetail"}}
            }
        }
    }
}`

// apiDoc 文档元数据
var apiDoc = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "reve validation rules API",
	Description:      "Lists externally configured validation rules.",
	InfoInstanceName: DocInstance,
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(apiDoc.InstanceName(), apiDoc)
}
