// Package docs registers the OpenAPI definition served at /swagger.
// Maintained by hand; run `swag init -g cmd/main.go` to regenerate it
// from the controller annotations instead.
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
        "/api/v1/auth/login": {
            "post": {
                "description": "Returns a signed bearer token on success",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in with email and password",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "description": "Self-service registration; accounts always start with the user role",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new account",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/api/v1/auth/token": {
            "post": {
                "description": "Obtain an access token using the client_credentials grant",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Token endpoint for API clients",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/api/v1/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Filtered, sorted, paginated task listing. Non-admin callers only ever see tasks assigned to them.",
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "List tasks",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Create a task from a multipart form with up to 3 PDF attachments",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Create a task",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/api/v1/tasks/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get a single task with its assignee identity",
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Get task by ID",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Update task fields; only the assignee or an admin may mutate",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Update a task",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Delete a task; only the assignee or an admin may delete",
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Delete a task",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/v1/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Filtered, sorted, paginated user listing. Admin only.",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Admin-only user creation; the password is stored hashed",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create a user",
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Forbidden"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/api/v1/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Admins may fetch any profile, other callers only their own",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get a user",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Admins may update any profile, other callers only their own",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update a user",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"},
                    "409": {"description": "Conflict"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Admin-only deletion",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Delete a user",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/v1/clients": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "List the clients owned by the calling admin",
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "List API clients",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Register a machine integration; the plaintext secret is returned exactly once",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Create an API client",
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/api/v1/clients/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Delete a client owned by the calling admin",
                "produces": ["application/json"],
                "tags": ["clients"],
                "summary": "Delete an API client",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Check if the service is running",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
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

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Task API",
	Description:      "A task management API with role-based access control",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
