package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "University course scheduling service: catalog management, automatic timetable generation, conflict detection and resolution.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Courses", "description": "Course catalog"},
        {"name": "Rooms", "description": "Room catalog"},
        {"name": "Availability", "description": "Instructor availability windows"},
        {"name": "Schedules", "description": "Schedule lifecycle and engine runs"},
        {"name": "Assignments", "description": "Manual assignment edits"},
        {"name": "Conflicts", "description": "Conflict listings and manual resolution"},
        {"name": "Exports", "description": "Asynchronous timetable exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "requires_lab", "in": "query", "type": "boolean"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/courses/{id}": {
            "get": {"tags": ["Courses"], "summary": "Get course", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Courses"], "summary": "Update course", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Courses"], "summary": "Delete course", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/rooms": {
            "get": {
                "tags": ["Rooms"],
                "summary": "List rooms",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "min_capacity", "in": "query", "type": "integer"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {"tags": ["Rooms"], "summary": "Create room", "responses": {"201": {"description": "Created"}}}
        },
        "/rooms/available": {
            "get": {
                "tags": ["Rooms"],
                "summary": "List rooms free at a slot",
                "parameters": [
                    {"name": "schedule_id", "in": "query", "required": true, "type": "string"},
                    {"name": "day", "in": "query", "required": true, "type": "string"},
                    {"name": "block", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rooms/{id}": {
            "get": {"tags": ["Rooms"], "summary": "Get room", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Rooms"], "summary": "Update room", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Rooms"], "summary": "Delete room", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "List availability windows",
                "parameters": [
                    {"name": "instructor_id", "in": "query", "type": "string"},
                    {"name": "day", "in": "query", "type": "string"},
                    {"name": "kind", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {"tags": ["Availability"], "summary": "Declare an availability window", "responses": {"201": {"description": "Created"}}}
        },
        "/availability/bulk": {
            "put": {"tags": ["Availability"], "summary": "Replace all windows of one instructor-day", "responses": {"200": {"description": "OK"}}}
        },
        "/availability/{id}": {
            "put": {"tags": ["Availability"], "summary": "Update window", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Availability"], "summary": "Delete window", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/schedules": {
            "get": {"tags": ["Schedules"], "summary": "List schedules", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Schedules"], "summary": "Create schedule", "responses": {"201": {"description": "Created"}}}
        },
        "/schedules/{id}": {
            "get": {"tags": ["Schedules"], "summary": "Get schedule", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Schedules"], "summary": "Update schedule", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Schedules"], "summary": "Delete schedule", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/schedules/{id}/generate": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Generate the timetable",
                "description": "Wipes previous assignments, rebuilds the schedule by bounded random placement and runs a conflict detection pass. Partial placement is a success.",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Generation summary"},
                    "404": {"description": "Schedule not found"},
                    "409": {"description": "Schedule state forbids generation"}
                }
            }
        },
        "/schedules/{id}/resolve": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Run automatic conflict resolution",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Resolution summary"}}
            }
        },
        "/schedules/{id}/stats": {
            "get": {"tags": ["Schedules"], "summary": "Schedule statistics", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/schedules/{id}/assignments": {
            "get": {"tags": ["Schedules"], "summary": "List schedule assignments", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/schedules/{id}/conflicts": {
            "get": {"tags": ["Schedules"], "summary": "List schedule conflicts", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/schedules/{id}/export": {
            "post": {
                "tags": ["Exports"],
                "summary": "Export a schedule's timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {"202": {"description": "Job accepted"}}
            }
        },
        "/exports/{job_id}": {
            "get": {"tags": ["Exports"], "summary": "Export job status", "parameters": [{"name": "job_id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/downloads": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an export artifact",
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File stream"}, "401": {"description": "Invalid token"}}
            }
        },
        "/assignments": {
            "get": {"tags": ["Assignments"], "summary": "List assignments", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Assignments"], "summary": "Book a slot by hand", "responses": {"201": {"description": "Created"}, "409": {"description": "Slot occupied or rules violated"}}}
        },
        "/assignments/{id}": {
            "get": {"tags": ["Assignments"], "summary": "Get assignment", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Assignments"], "summary": "Move assignment", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Assignments"], "summary": "Delete assignment", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/assignments/{id}/active": {
            "patch": {"tags": ["Assignments"], "summary": "Toggle assignment active flag", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/conflicts": {
            "get": {"tags": ["Conflicts"], "summary": "List conflicts", "responses": {"200": {"description": "OK"}}}
        },
        "/conflicts/{id}": {
            "get": {"tags": ["Conflicts"], "summary": "Get conflict", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/conflicts/{id}/resolve-manual": {
            "post": {"tags": ["Conflicts"], "summary": "Mark a conflict resolved by hand", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
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
        "ExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]}
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
