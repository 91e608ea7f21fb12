package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Staff Attendance API",
        "description": "Read-only JSON endpoints for the staff attendance web app. Requests are authenticated with the browser session cookie.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Attendance", "description": "Staff sign-in state and early departures"},
        {"name": "Learners", "description": "Learner headcount by band and gender"},
        {"name": "Ops", "description": "Liveness and readiness probes, served at the root"}
    ],
    "paths": {
        "/attendance/status": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance status of the signed-in staff member",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AttendanceStatusEnvelope"}},
                    "401": {"description": "Not signed in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/early-departures": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Early departure counts per staff member",
                "description": "Weekday sign-outs before the configured cutoff, keyed by staff ID. Administrators only.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EarlyDeparturesEnvelope"}},
                    "401": {"description": "Not signed in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not an administrator", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/learners/headcount": {
            "get": {
                "tags": ["Learners"],
                "summary": "Learner headcount for the dashboard chart",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HeadcountEnvelope"}},
                    "401": {"description": "Not signed in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Attendance": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "staff_id": {"type": "string"},
                "login_time": {"type": "string", "format": "date-time"},
                "logout_time": {"type": "string", "format": "date-time"},
                "logout_reason": {"type": "string"}
            }
        },
        "AttendanceStatus": {
            "type": "object",
            "properties": {
                "staff_id": {"type": "string"},
                "signed_in": {"type": "boolean"},
                "open": {"$ref": "#/definitions/Attendance"},
                "last_sign_in": {"type": "string", "format": "date-time"}
            }
        },
        "Headcount": {
            "type": "object",
            "properties": {
                "categories": {"type": "array", "items": {"type": "string"}},
                "girls": {"type": "array", "items": {"type": "integer"}},
                "boys": {"type": "array", "items": {"type": "integer"}},
                "total_population": {"type": "integer"},
                "recorded_at": {"type": "string", "format": "date-time"}
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
                "meta": {"type": "object"}
            }
        },
        "AttendanceStatusEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/AttendanceStatus"}
            }
        },
        "EarlyDeparturesEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "HeadcountEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Headcount"}
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
