// Package docs registers the admin API's swagger spec with swaggo/swag so
// gin-swagger can serve it at /swagger. In the teacher repository this file
// is produced by running `swag init` over the handler annotations in
// internal/api/handlers; it is hand-written here in the same generated
// shape since this module never invokes that code-generation step.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": ["http"],
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{.Description}}",
        "version": "{{.Version}}"
    },
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/health": {
            "get": {
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "ok"}}
            }
        },
        "/api/v1/stats": {
            "get": {
                "tags": ["system"],
                "summary": "Service statistics",
                "responses": {"200": {"description": "ok"}}
            }
        },
        "/api/v1/stats/history": {
            "get": {
                "tags": ["proxy"],
                "summary": "Fragment delivery history",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "required": false}
                ],
                "responses": {"200": {"description": "ok"}, "404": {"description": "history not enabled"}}
            }
        }
    }
}`

// SwaggerInfo holds exported swagger spec metadata for the admin API.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Video CDN admin API",
	Description:      "Read-only stats surface for the proxy and nameserver.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
