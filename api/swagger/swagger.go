package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Admissions API",
        "description": "Workflow engine for the admissions portal: application status, officer assignment and SSC eligibility",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and session management"},
        {"name": "Applications", "description": "Application workflow transitions"},
        {"name": "Assignments", "description": "Officer assignment distribution"},
        {"name": "Qualifications", "description": "SSC qualification records and eligibility evaluation"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Token expired or revoked"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "responses": {
                    "204": {"description": "No content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applications/{id}/submit": {
            "post": {
                "tags": ["Applications"],
                "summary": "Submit a draft application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Application incomplete"},
                    "422": {"description": "Illegal transition"}
                }
            }
        },
        "/applications/{id}/decision": {
            "post": {
                "tags": ["Applications"],
                "summary": "Record a reviewer decision",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Rejection without reason"},
                    "422": {"description": "Illegal transition"}
                }
            }
        },
        "/applications/{id}/admit": {
            "post": {
                "tags": ["Applications"],
                "summary": "Admit an approved application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Illegal transition"}
                }
            }
        },
        "/applications/{id}/reassign": {
            "post": {
                "tags": ["Applications"],
                "summary": "Reassign an application to another officer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReassignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Officer not found"},
                    "412": {"description": "Application has no assigned officer"}
                }
            }
        },
        "/applications/{id}/qualification": {
            "get": {
                "tags": ["Qualifications"],
                "summary": "Get an application's SSC qualification",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Qualifications"],
                "summary": "Update an application's SSC qualification",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateQualificationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"},
                    "409": {"description": "Concurrent edit"}
                }
            }
        },
        "/applications/{id}/qualification/evaluation": {
            "get": {
                "tags": ["Qualifications"],
                "summary": "Evaluate an application's SSC qualification",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/assignments/preview": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Preview a distribution scope",
                "parameters": [
                    {"name": "scope_type", "in": "query", "required": true, "type": "string"},
                    {"name": "scope_target_id", "in": "query", "type": "string"},
                    {"name": "session_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Scope target not found"}
                }
            }
        },
        "/assignments/distribute": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Distribute applications to an officer",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DistributeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Batch result, partial success included", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request"},
                    "404": {"description": "Officer or scope target not found"}
                }
            }
        },
        "/officers/{id}/applications": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List an officer's assigned applications",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/officers/{id}/workload-report": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Export an officer workload report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "400": {"description": "Unsupported format"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "DecisionRequest": {
            "type": "object",
            "required": ["outcome"],
            "properties": {
                "outcome": {"type": "string", "enum": ["APPROVED", "REJECTED"]},
                "reason": {"type": "string"},
                "comments": {"type": "string"}
            }
        },
        "ReassignRequest": {
            "type": "object",
            "required": ["officerId"],
            "properties": {
                "officerId": {"type": "string"}
            }
        },
        "DistributeRequest": {
            "type": "object",
            "required": ["officerId", "scopeType", "count"],
            "properties": {
                "officerId": {"type": "string"},
                "scopeType": {"type": "string", "enum": ["FACULTY", "DEPARTMENT", "PROGRAM", "RANDOM"]},
                "scopeTargetId": {"type": "string"},
                "sessionId": {"type": "string"},
                "count": {"type": "integer"}
            }
        },
        "UpdateQualificationRequest": {
            "type": "object",
            "required": ["numberOfSittings", "certificateTypes"],
            "properties": {
                "numberOfSittings": {"type": "integer"},
                "certificateTypes": {"type": "array", "items": {"type": "string"}},
                "subjects": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "subjectId": {"type": "string"},
                            "grade": {"type": "string"}
                        }
                    }
                },
                "version": {"type": "integer"}
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
