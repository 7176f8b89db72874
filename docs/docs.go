// Package docs регистрирует Swagger-описание API пользователей для http-swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Проверка живости",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Health"}},
                    "500": {"description": "База данных недоступна", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Возвращает всех пользователей. Только для администраторов.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Список пользователей",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PublicUser"}}},
                    "401": {"description": "Нет токена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Недостаточно прав или неверный токен", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/login": {
            "post": {
                "description": "Проверяет email и пароль, возвращает JWT сроком на час.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Авторизация пользователя",
                "parameters": [
                    {"description": "Учетные данные пользователя", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/login.Request"}}
                ],
                "responses": {
                    "200": {"description": "Успешная авторизация", "schema": {"$ref": "#/definitions/login.Response"}},
                    "400": {"description": "Некорректный JSON или ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Неверные учетные данные", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Слишком много запросов", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/register": {
            "post": {
                "description": "Создаёт пользователя с ролью user. Имя и email обрезаются по краям.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Регистрация нового пользователя",
                "parameters": [
                    {"description": "Данные пользователя", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/register.Request"}}
                ],
                "responses": {
                    "201": {"description": "Пользователь создан", "schema": {"$ref": "#/definitions/register.Response"}},
                    "400": {"description": "Некорректный JSON или ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Email уже зарегистрирован", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Слишком много запросов", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Доступно самому пользователю и администратору.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Пользователь по ID",
                "parameters": [
                    {"type": "string", "description": "ID пользователя", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PublicUser"}},
                    "401": {"description": "Нет токена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Недостаточно прав или неверный токен", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/block": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "Пользователь может заблокировать себя, администратор любого пользователя, кроме администраторов.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Заблокировать пользователя",
                "parameters": [
                    {"type": "string", "description": "ID пользователя", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Пользователь заблокирован", "schema": {"$ref": "#/definitions/block.Response"}},
                    "401": {"description": "Нет токена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Недостаточно прав или попытка заблокировать администратора", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "block.Response": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "user blocked successfully"},
                "user": {"$ref": "#/definitions/models.PublicUser"}
            }
        },
        "login.Request": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "example": "ann@example.com"},
                "password": {"type": "string", "example": "secret1"}
            }
        },
        "login.Response": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "login successful"},
                "token": {"type": "string", "example": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."},
                "user": {"$ref": "#/definitions/models.PublicUser"}
            }
        },
        "models.PublicUser": {
            "type": "object",
            "properties": {
                "dateOfBirth": {"type": "string", "example": "1990-01-15"},
                "email": {"type": "string", "example": "ivan.ivanov@example.com"},
                "fullName": {"type": "string", "example": "Ivan Ivanov"},
                "id": {"type": "string", "example": "0b8f2a4e-6c2d-4d7f-9a51-3f1f4b0f9c11"},
                "isActive": {"type": "boolean", "example": true},
                "role": {"type": "string", "enum": ["admin", "user"], "example": "user"}
            }
        },
        "register.Request": {
            "type": "object",
            "required": ["dateOfBirth", "email", "fullName", "password"],
            "properties": {
                "dateOfBirth": {"type": "string", "example": "1990-05-17"},
                "email": {"type": "string", "example": "ann@example.com"},
                "fullName": {"type": "string", "maxLength": 255, "minLength": 3, "example": "Ann Smith"},
                "password": {"type": "string", "minLength": 6, "example": "secret1"}
            }
        },
        "register.Response": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "user registered successfully"},
                "user": {"$ref": "#/definitions/models.PublicUser"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "invalid request body"},
                "status": {"type": "string", "example": "Error"}
            }
        },
        "response.Health": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "OK"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo содержит экспортируемую информацию Swagger, которую можно менять при старте.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Users Service API",
	Description:      "Регистрация, аутентификация и администрирование пользователей",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
