// Package docs holds the OpenAPI document served under /swagger when the
// binary is built with -tags=swagger. Regenerate with `swag init -g cmd/detectd/docs.go`.
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
                "description": "Always 200. model_loaded is false when the weights failed to load at startup.",
                "produces": ["application/json"],
                "tags": ["service"],
                "summary": "Liveness and model state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}}
                }
            }
        },
        "/infer": {
            "post": {
                "description": "Accepts a base64 image, optionally as a data URL, and returns every detection sorted by confidence.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inference"],
                "summary": "Detect objects in an image",
                "parameters": [
                    {
                        "description": "Image payload",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.InferRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.InferResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/labels": {
            "get": {
                "produces": ["application/json"],
                "tags": ["service"],
                "summary": "Model label table",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.LabelsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["service"],
                "summary": "Detailed service status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "No image data provided"}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {
                "model_loaded": {"type": "boolean", "example": true},
                "status": {"type": "string", "example": "healthy"}
            }
        },
        "types.InferRequest": {
            "type": "object",
            "properties": {
                "image": {"type": "string", "example": "data:image/png;base64,iVBORw0KGgo..."}
            }
        },
        "types.InferResponse": {
            "type": "object",
            "properties": {
                "predictions": {"type": "array", "items": {"$ref": "#/definitions/types.Prediction"}}
            }
        },
        "types.LabelsResponse": {
            "type": "object",
            "properties": {
                "labels": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.ModelStatus": {
            "type": "object",
            "properties": {
                "classes": {"type": "integer", "example": 80},
                "device": {"type": "string", "example": "cuda"},
                "input_height": {"type": "integer", "example": 640},
                "input_width": {"type": "integer", "example": 640},
                "path": {"type": "string", "example": "/srv/models/best.onnx"},
                "pool_in_use": {"type": "integer", "example": 0},
                "pool_size": {"type": "integer", "example": 1}
            }
        },
        "types.Prediction": {
            "type": "object",
            "properties": {
                "box": {"type": "array", "items": {"type": "number"}},
                "class": {"type": "string", "example": "person"},
                "confidence": {"type": "number", "example": 0.91}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "cpu_features": {"type": "array", "items": {"type": "string"}},
                "failures_total": {"type": "integer", "example": 1},
                "last_error": {"type": "string"},
                "model": {"$ref": "#/definitions/types.ModelStatus"},
                "model_loaded": {"type": "boolean", "example": true},
                "requests_total": {"type": "integer", "example": 42},
                "server_time_unix": {"type": "integer", "example": 1700000000},
                "state": {"type": "string", "example": "ready"},
                "uptime_seconds": {"type": "integer", "example": 3600}
            }
        }
    },
    "tags": [
        {"description": "Run the loaded detection model.", "name": "inference"},
        {"description": "Health, readiness, status and label table.", "name": "service"}
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "detectd API",
	Description:      "Object detection over HTTP. POST a base64 or data-URL image\nto /infer and get labelled boxes in source pixels, highest\nconfidence first.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
