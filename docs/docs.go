// Package docs registers the OpenAPI document served under /swagger/.
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
    "paths": {
        "/api/signup": {
            "post": {
                "description": "Registers a new account with a zero balance.",
                "consumes": ["application/json"],
                "produces": ["text/plain"],
                "tags": ["accounts"],
                "summary": "Create an account",
                "parameters": [
                    {
                        "description": "Username and password",
                        "name": "account",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/model.SignupRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "User created successfully", "schema": {"type": "string"}},
                    "400": {"description": "Invalid body or username already exists", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/login": {
            "post": {
                "description": "Verifies the credentials, starts a session cookie and returns the balance.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Log in",
                "parameters": [
                    {
                        "description": "Username and password",
                        "name": "credentials",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/model.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.BalanceResponse"}},
                    "400": {"description": "Invalid body", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "401": {"description": "Login failed", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/deposit": {
            "post": {
                "description": "Moves amount from the logged-in account to the single designated destination account.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["deposits"],
                "summary": "Transfer to the designated account",
                "parameters": [
                    {
                        "description": "Destination and amount",
                        "name": "deposit",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/model.DepositRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "New balance of the logged-in account", "schema": {"$ref": "#/definitions/model.BalanceResponse"}},
                    "400": {"description": "Invalid destination, invalid amount or insufficient balance", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "401": {"description": "Not logged in", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "get the status of server",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Show the status of server",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "common.AppError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "model.BalanceResponse": {
            "type": "object",
            "properties": {
                "balance": {"type": "number"}
            }
        },
        "model.DepositRequest": {
            "type": "object",
            "required": ["toAccount"],
            "properties": {
                "amount": {"type": "number"},
                "toAccount": {"type": "string"}
            }
        },
        "model.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "model.SignupRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string", "maxLength": 72},
                "username": {"type": "string", "maxLength": 64}
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
	Title:            "Go-Deposit API",
	Description:      "Account signup, login and deposits to the designated account.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
