// Package docs holds the generated swagger definition served at
// /swagger/doc.json.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "summary": "Service health",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/server.HealthResponse"}
                    }
                }
            }
        },
        "/api/runs": {
            "get": {
                "produces": ["application/json"],
                "summary": "List runs",
                "parameters": [
                    {
                        "type": "integer",
                        "default": 50,
                        "description": "Maximum number of runs",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/store.Run"}
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/server.ErrorResponse"}
                    }
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "summary": "Start an equalization run",
                "description": "Upload one RFP document and up to 20 proposal documents. Extraction and report generation happen in the background; poll the returned run id for progress.",
                "parameters": [
                    {
                        "type": "file",
                        "description": "RFP document (PDF)",
                        "name": "rfp",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "file",
                        "description": "Proposal documents (PDF), repeatable",
                        "name": "proposals",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {"$ref": "#/definitions/store.Run"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/server.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/server.ErrorResponse"}
                    }
                }
            }
        },
        "/api/runs/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get run status",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Run id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/store.Run"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/server.ErrorResponse"}
                    }
                }
            }
        },
        "/api/runs/{id}/report": {
            "get": {
                "produces": ["application/octet-stream"],
                "summary": "Download the consolidated report",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Run id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "default": "xlsx",
                        "description": "csv or xlsx",
                        "name": "format",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/server.ErrorResponse"}
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {"$ref": "#/definitions/server.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "server.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "store.Run": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string"},
                "rfp_name": {"type": "string"},
                "proposal_count": {"type": "integer"},
                "output_dir": {"type": "string"},
                "csv_path": {"type": "string"},
                "xlsx_path": {"type": "string"},
                "error": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Equalprop API",
	Description:      "Proposal equalization service: extracts RFP and proposal data, generates comparison reports and a consolidated workbook.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
