// Package docs registra la definición Swagger servida en /swagger/*.
// Mantener en sincronía con las anotaciones de los handlers.
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
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login com e-mail e senha",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apperr.Body"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/apperr.Body"}}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Logout",
                "security": [{"Bearer": []}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/me": {
            "get": {
                "tags": ["auth"],
                "summary": "Identidade da credencial atual",
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AccountResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apperr.Body"}}
                }
            }
        },
        "/usuarios": {
            "post": {
                "tags": ["auth"],
                "summary": "Cadastro de cidadão",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/AccountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperr.Body"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/apperr.Body"}}
                }
            }
        },
        "/advogados": {
            "post": {
                "tags": ["auth"],
                "summary": "Cadastro de advogado",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/AccountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperr.Body"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/apperr.Body"}}
                }
            }
        },
        "/causas": {
            "get": {
                "tags": ["causas"],
                "summary": "Lista casos abertos (busca opcional por título/descrição)",
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "parameters": [{"in": "query", "name": "q", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/CaseResponse"}}}}
            },
            "post": {
                "tags": ["causas"],
                "summary": "Submete um novo caso (somente USUARIO)",
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/submitCaseRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CaseResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperr.Body"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/apperr.Body"}}
                }
            }
        },
        "/causas/historico": {
            "get": {
                "tags": ["causas"],
                "summary": "Histórico de casos do usuário autenticado",
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "parameters": [{"in": "query", "name": "status", "type": "string", "enum": ["ABERTA", "COM_PROPOSTAS", "ACEITA", "CONCLUIDA"]}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/RowResponse"}}}}
            }
        },
        "/causas/{caseID}": {
            "get": {
                "tags": ["causas"],
                "summary": "Detalhe do caso",
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "caseID", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CaseResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apperr.Body"}}
                }
            }
        },
        "/causas/{caseID}/concluir": {
            "post": {
                "tags": ["causas"],
                "summary": "Marca o caso como concluído (dono, após aceite)",
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "caseID", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CaseResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/apperr.Body"}}
                }
            }
        },
        "/causas/{caseID}/propostas/{proposalID}/aceitar": {
            "post": {
                "tags": ["propostas"],
                "summary": "Aceita uma proposta (dono do caso)",
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "caseID", "required": true, "type": "string"},
                    {"in": "path", "name": "proposalID", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/acceptResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/apperr.Body"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/apperr.Body"}}
                }
            }
        },
        "/propostas": {
            "get": {
                "tags": ["propostas"],
                "summary": "Lista propostas de um caso (somente o dono)",
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "parameters": [{"in": "query", "name": "causa_id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ProposalResponse"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/apperr.Body"}}
                }
            },
            "post": {
                "tags": ["propostas"],
                "summary": "Envia proposta para um caso (somente ADVOGADO)",
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/submitProposalRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ProposalResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperr.Body"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/apperr.Body"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/apperr.Body"}}
                }
            }
        }
    },
    "definitions": {
        "apperr.Body": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "field": {"type": "string"}}
        },
        "loginRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["USUARIO", "ADVOGADO"]},
                "authorities": {"type": "array", "items": {"type": "object", "properties": {"authority": {"type": "string"}}}}
            }
        },
        "registerRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "minLength": 3, "maxLength": 50},
                "email": {"type": "string", "maxLength": 50},
                "password": {"type": "string", "minLength": 6, "maxLength": 50},
                "oab": {"type": "string"}
            }
        },
        "AccountResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "oab": {"type": "string"}
            }
        },
        "submitCaseRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "minLength": 5, "maxLength": 100},
                "description": {"type": "string", "minLength": 20, "maxLength": 2000}
            }
        },
        "CaseResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["OPEN", "HAS_PROPOSALS", "ACCEPTED", "CONCLUDED"]},
                "usuario": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}}},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "RowResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "titulo": {"type": "string"},
                "status": {"type": "string"},
                "dataCriacao": {"type": "string"}
            }
        },
        "submitProposalRequest": {
            "type": "object",
            "properties": {
                "causaId": {"type": "string"},
                "mensagem": {"type": "string", "minLength": 10, "maxLength": 1000},
                "valorSugerido": {"type": "number", "minimum": 0}
            }
        },
        "ProposalResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "causaId": {"type": "string"},
                "mensagem": {"type": "string"},
                "valorSugerido": {"type": "number"},
                "advogado": {"type": "object", "properties": {"id": {"type": "string"}, "nome": {"type": "string"}}},
                "createdAt": {"type": "string"},
                "aceita": {"type": "boolean"},
                "aceitaEm": {"type": "string"}
            }
        },
        "acceptResponse": {
            "type": "object",
            "properties": {
                "causa": {"$ref": "#/definitions/CaseResponse"},
                "proposta": {"$ref": "#/definitions/ProposalResponse"}
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
	Title:            "Advogados Solidários API",
	Description:      "Casos de assistência jurídica, propostas de advogados voluntários e histórico.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
