// Package docs holds the generated OpenAPI definition served at /swagger/.
// Regenerate with: swag init -g cmd/interviewer/main.go -o docs
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
        "/sessions": {
            "post": {
                "summary": "Register a candidate and start an interview",
                "tags": ["sessions"],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Missing name or unknown/empty test"}
                }
            }
        },
        "/sessions/{id}/question": {
            "get": {
                "summary": "Get the current question",
                "tags": ["sessions"],
                "produces": ["application/json", "audio/wav"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "audio", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Unknown session"},
                    "409": {"description": "Session already completed"}
                }
            }
        },
        "/sessions/{id}/answers": {
            "post": {
                "summary": "Submit a text answer",
                "tags": ["sessions"],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Unknown session"},
                    "409": {"description": "Session already completed"},
                    "422": {"description": "Empty answer"},
                    "503": {"description": "Turn could not be persisted; retry"}
                }
            }
        },
        "/sessions/{id}/answers/voice": {
            "post": {
                "summary": "Submit a voice answer",
                "tags": ["sessions"],
                "consumes": ["audio/wav", "audio/ogg", "audio/mpeg"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Unknown session"},
                    "409": {"description": "Session already completed"},
                    "422": {"description": "No intelligible speech in the audio"},
                    "502": {"description": "All speech recognizers unavailable"},
                    "503": {"description": "Turn could not be persisted; retry"}
                }
            }
        },
        "/sessions/{id}/summary": {
            "get": {
                "summary": "Get the session summary",
                "tags": ["sessions"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Unknown session"}
                }
            }
        },
        "/tests": {
            "get": {
                "summary": "List available tests",
                "tags": ["tests"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/tests/{name}/stats": {
            "get": {
                "summary": "Scoring statistics for a test",
                "tags": ["tests"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "name", "in": "path", "type": "string", "required": true},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Malformed from/to timestamp"},
                    "404": {"description": "Unknown test"}
                }
            }
        },
        "/turns/{id}/human-score": {
            "patch": {
                "summary": "Set the human score of a turn",
                "tags": ["turns"],
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Score recorded"},
                    "400": {"description": "Score out of range"},
                    "404": {"description": "Unknown turn"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "AI Interviewer API",
	Description:      "Interview orchestration: sessions, voice and text answers, automated scoring, and reviewer statistics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
