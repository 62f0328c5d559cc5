// Package docs holds the OpenAPI description served at /swagger. Regenerate with
// `swag init -g cmd/api/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Readiness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/service.RegisterInput"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.TokenResult"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/articles": {
            "get": {
                "tags": ["articles"],
                "summary": "List articles",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "DRAFT, IN_REVIEW or PUBLISHED", "name": "status", "in": "query"},
                    {"type": "string", "description": "tag id", "name": "tag", "in": "query"},
                    {"type": "string", "description": "author id", "name": "author", "in": "query"},
                    {"type": "string", "description": "recent or popular", "name": "sort", "in": "query"},
                    {"type": "integer", "default": 10, "description": "page size", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "offset", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/courses/{id}/certificate": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["courses"],
                "summary": "Course certificate",
                "produces": ["application/pdf"],
                "parameters": [{"type": "string", "description": "course id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/payments/checkout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["payments"],
                "summary": "Checkout",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/service.CheckoutInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.CheckoutResult"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/payments/webhooks/notchpay": {
            "post": {
                "tags": ["payments"],
                "summary": "NotchPay webhook",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/search": {
            "get": {
                "tags": ["search"],
                "summary": "Search",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "at least 3 characters", "name": "q", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/tips": {
            "get": {
                "tags": ["tips"],
                "summary": "Daily tip",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Tip"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/media": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["media"],
                "summary": "Upload media",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [{"type": "file", "description": "file", "name": "file", "in": "formData", "required": true}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "fields": {"type": "array", "items": {"type": "object"}}
            }
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "error": {"$ref": "#/definitions/handler.errorEnvelope"}
            }
        },
        "service.RegisterInput": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "service.TokenResult": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "service.CheckoutInput": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"},
                "provider": {"type": "string", "enum": ["STRIPE", "NOTCHPAY"]}
            }
        },
        "service.CheckoutResult": {
            "type": "object",
            "properties": {
                "reference": {"type": "string"},
                "provider": {"type": "string"},
                "amount": {"type": "integer"},
                "currency": {"type": "string"},
                "status": {"type": "string"},
                "client_secret": {"type": "string"},
                "redirect_url": {"type": "string"}
            }
        },
        "service.Tip": {
            "type": "object",
            "properties": {
                "tip": {"type": "string"},
                "date": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "zerofiltre API",
	Description:      "Blog, course and company backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
