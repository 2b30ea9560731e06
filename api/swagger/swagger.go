package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "RDIC Workflow API",
        "description": "Review, finalization and publication of per-child RDIC reports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Reports", "description": "RDIC lifecycle: draft, review, finalize, publish"}
    ],
    "parameters": {
        "ReportID": {"name": "id", "in": "path", "required": true, "type": "string"},
        "Scope": {"name": "scope", "in": "query", "type": "string", "description": "Comma separated scope ids"},
        "Status": {"name": "status", "in": "query", "type": "string", "description": "Comma separated statuses"},
        "SubjectID": {"name": "subjectId", "in": "query", "type": "string"},
        "Period": {"name": "period", "in": "query", "type": "string"},
        "Page": {"name": "page", "in": "query", "type": "integer", "minimum": 1},
        "PageSize": {"name": "pageSize", "in": "query", "type": "integer", "minimum": 1, "maximum": 200}
    },
    "paths": {
        "/reports": {
            "get": {
                "tags": ["Reports"],
                "summary": "List visible reports",
                "parameters": [
                    {"$ref": "#/parameters/Scope"},
                    {"$ref": "#/parameters/Status"},
                    {"$ref": "#/parameters/SubjectID"},
                    {"$ref": "#/parameters/Period"},
                    {"$ref": "#/parameters/Page"},
                    {"$ref": "#/parameters/PageSize"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Unknown role", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Reports"],
                "summary": "Open a draft report",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/summaries": {
            "get": {
                "tags": ["Reports"],
                "summary": "List report status badges",
                "parameters": [
                    {"$ref": "#/parameters/Status"},
                    {"$ref": "#/parameters/Period"},
                    {"$ref": "#/parameters/Page"},
                    {"$ref": "#/parameters/PageSize"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/export.csv": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download visible report statuses as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"$ref": "#/parameters/Status"},
                    {"$ref": "#/parameters/Period"}
                ],
                "responses": {
                    "200": {"description": "CSV file", "schema": {"type": "file"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Get report detail",
                "parameters": [{"$ref": "#/parameters/ReportID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not visible to caller", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/history": {
            "get": {
                "tags": ["Reports"],
                "summary": "Get report transition history",
                "parameters": [{"$ref": "#/parameters/ReportID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/export.pdf": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a published report as PDF",
                "produces": ["application/pdf"],
                "parameters": [{"$ref": "#/parameters/ReportID"}],
                "responses": {
                    "200": {"description": "PDF file", "schema": {"type": "file"}},
                    "409": {"description": "Report not published", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/actions": {
            "post": {
                "tags": ["Reports"],
                "summary": "Apply a workflow action",
                "description": "SUBMIT, RETURN_TO_AUTHOR, EDIT, FINALIZE or PUBLISH.",
                "parameters": [
                    {"$ref": "#/parameters/ReportID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplyActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition or stale version", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateReportRequest": {
            "type": "object",
            "required": ["subjectId", "scopeId", "period"],
            "properties": {
                "subjectId": {"type": "string", "maxLength": 64},
                "scopeId": {"type": "string", "maxLength": 64},
                "period": {"type": "string", "maxLength": 32},
                "draftPayload": {"type": "object"}
            }
        },
        "ApplyActionRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["SUBMIT", "RETURN_TO_AUTHOR", "EDIT", "FINALIZE", "PUBLISH"]},
                "payload": {"type": "object"},
                "version": {"type": "integer", "minimum": 1}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
