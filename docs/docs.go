// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {"tags": ["system"], "summary": "Health check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/metrics": {
            "get": {"tags": ["system"], "summary": "Prometheus metrics", "produces": ["text/plain"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/auth/sign-up": {
            "post": {"tags": ["auth"], "summary": "Register an operator", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "id"}, "400": {"description": "Bad Request"}, "500": {"description": "Internal Server Error"}}}
        },
        "/auth/sign-in": {
            "post": {"tags": ["auth"], "summary": "Issue an operator token", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "token"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/status": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["fridge"], "summary": "Current status", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Snapshot"}}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/display": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["fridge"], "summary": "Last rendered display", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Nothing rendered yet"}}}
        },
        "/api/v1/log-level": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["fridge"], "summary": "Set log level", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SetLevelRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "503": {"description": "Monitor loop unavailable"}}}
        },
        "/api/v1/button": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["fridge"], "summary": "Press the button", "produces": ["application/json"],
                "responses": {"202": {"description": "Accepted"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}}
        },
        "/api/v1/logs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "List history", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "query", "name": "from", "description": "Start of range"},
                    {"type": "string", "in": "query", "name": "to", "description": "End of range. Date-only treated as end of day."},
                    {"enum": ["START", "STOP", "ALARM_RAISED", "ALARM_CLEARED", "LEVEL_CHANGE", "SELF_CHECK_FAILED"], "type": "string", "in": "query", "name": "type", "description": "Event type"}
                ],
                "responses": {"200": {"description": "count, events"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/ws": {
            "get": {"tags": ["fridge"], "summary": "Live status stream (WebSocket)",
                "parameters": [
                    {"type": "string", "in": "query", "name": "interval", "description": "Minimum gap between pushes, e.g. 2s"},
                    {"type": "integer", "in": "query", "name": "interval_ms", "description": "Minimum gap between pushes in ms"}
                ],
                "responses": {"101": {"description": "Switching Protocols"}}}
        }
    },
    "definitions": {
        "credentials": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.SetLevelRequest": {
            "type": "object",
            "required": ["level"],
            "properties": {"level": {"type": "integer", "example": 1, "description": "0 DEBUG, 1 INFO, 2 WARNING, 3 ERROR"}}
        },
        "service.Snapshot": {
            "type": "object",
            "properties": {
                "sample": {"type": "object"},
                "display": {"type": "object", "properties": {"line1": {"type": "string"}, "line2": {"type": "string"}}},
                "log_level": {"type": "string"},
                "level": {"type": "integer"},
                "alarms": {"type": "array", "items": {"type": "object"}},
                "ticks": {"type": "integer"},
                "updated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Smart Fridge Controller API",
	Description:      "Status, display, history and log level control of the fridge controller.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
