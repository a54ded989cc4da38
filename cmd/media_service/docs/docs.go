// Package docs swagger document of media_service, in the swag layout.
// Keep the paths in step with the @Router annotations in internal/streaming/api/handlers.
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
        "/": {
            "get": {
                "tags": ["Shared"],
                "summary": "Check media service status",
                "responses": {"200": {"description": "media service start!", "schema": {"type": "string"}}}
            }
        },
        "/health": {
            "get": {
                "tags": ["Shared"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/debug": {
            "post": {
                "tags": ["Shared"],
                "summary": "Toggle Debug Log Flag",
                "parameters": [
                    {"type": "string", "description": "Service name", "name": "service", "in": "query", "required": true},
                    {"type": "boolean", "description": "Debug status", "name": "status", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "Service debug mode updated", "schema": {"type": "string"}},
                    "400": {"description": "Invalid status value", "schema": {"type": "string"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["Shared"],
                "summary": "Prometheus metrics",
                "responses": {"200": {"description": "OK", "schema": {"type": "string"}}}
            }
        },
        "/upload": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Video"],
                "summary": "Upload a video",
                "parameters": [
                    {"type": "file", "description": "Video file", "name": "video", "in": "formData", "required": true},
                    {"type": "string", "description": "Video title", "name": "title", "in": "formData"},
                    {"type": "string", "description": "Video description", "name": "description", "in": "formData"},
                    {"type": "string", "description": "Group id, defaults to default", "name": "groupId", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.UploadVideoRes"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}},
                    "422": {"description": "Probe failed or unsupported codec", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}}
                }
            }
        },
        "/videos": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Video"],
                "summary": "List all videos",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Video"}}}}
            }
        },
        "/videos/{groupId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Video"],
                "summary": "List videos of a group",
                "parameters": [{"type": "string", "description": "Group id", "name": "groupId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Video"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}}
                }
            }
        },
        "/groups": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Video"],
                "summary": "List known group ids",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}}
            }
        },
        "/video/{groupId}/{id}/meta": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Video"],
                "summary": "Get video metadata",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "groupId", "in": "path", "required": true},
                    {"type": "string", "description": "Video id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Video"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}}
                }
            }
        },
        "/video/{groupId}/{id}/thumbnail.jpg": {
            "get": {
                "produces": ["image/jpeg"],
                "tags": ["Playback"],
                "summary": "Video thumbnail",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "groupId", "in": "path", "required": true},
                    {"type": "string", "description": "Video id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}}
                }
            }
        },
        "/video/{groupId}/{id}/original.mp4": {
            "get": {
                "produces": ["video/mp4"],
                "tags": ["Playback"],
                "summary": "Original upload, 404 once the job finished",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "groupId", "in": "path", "required": true},
                    {"type": "string", "description": "Video id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "bytes=start-end", "name": "Range", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "206": {"description": "Partial Content", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}}
                }
            }
        },
        "/video/{groupId}/{id}/{resolution}/hls/playlist.m3u8": {
            "get": {
                "produces": ["application/vnd.apple.mpegurl"],
                "tags": ["Playback"],
                "summary": "HLS playlist of one rendition",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "groupId", "in": "path", "required": true},
                    {"type": "string", "description": "Video id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "1080p, 720p or 480p", "name": "resolution", "in": "path", "required": true},
                    {"type": "string", "description": "bytes=start-end", "name": "Range", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "206": {"description": "Partial Content", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}},
                    "416": {"description": "Range Not Satisfiable", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}}
                }
            }
        },
        "/video/{groupId}/{id}/{resolution}/hls/{segment}": {
            "get": {
                "produces": ["video/mp2t"],
                "tags": ["Playback"],
                "summary": "HLS transport stream segment",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "groupId", "in": "path", "required": true},
                    {"type": "string", "description": "Video id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "1080p, 720p or 480p", "name": "resolution", "in": "path", "required": true},
                    {"type": "string", "description": "segment-NNNNN.ts", "name": "segment", "in": "path", "required": true},
                    {"type": "string", "description": "bytes=start-end", "name": "Range", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "206": {"description": "Partial Content", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}},
                    "416": {"description": "Range Not Satisfiable", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}}
                }
            }
        },
        "/jobs/{jobId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Job"],
                "summary": "Transcode job status",
                "parameters": [{"type": "string", "description": "Job id", "name": "jobId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.JobStatus"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}},
                    "501": {"description": "Queue backend keeps no job state", "schema": {"$ref": "#/definitions/handlers.ErrorRes"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Quality": {
            "type": "object",
            "properties": {
                "resolution": {"type": "string"},
                "hls": {"type": "string"}
            }
        },
        "domain.Video": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "groupId": {"type": "string"},
                "name": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "size": {"type": "integer"},
                "qualities": {"type": "array", "items": {"$ref": "#/definitions/domain.Quality"}},
                "thumbnail": {"type": "string"},
                "viewCount": {"type": "integer"},
                "commentCount": {"type": "integer"},
                "likeCount": {"type": "integer"},
                "shareCount": {"type": "integer"},
                "createdAt": {"type": "string"}
            }
        },
        "domain.UploadVideoRes": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "jobId": {"type": "string"},
                "videoId": {"type": "string"},
                "groupId": {"type": "string"},
                "qualities": {"type": "array", "items": {"type": "string"}},
                "statusUrl": {"type": "string"}
            }
        },
        "domain.JobStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "videoId": {"type": "string"},
                "groupId": {"type": "string"},
                "state": {"type": "string", "enum": ["waiting", "active", "completed", "failed"]},
                "error": {"type": "string"},
                "attempts": {"type": "integer"},
                "updatedAt": {"type": "string"},
                "finishedAt": {"type": "string"}
            }
        },
        "handlers.ErrorRes": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:4000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Video Stream Service API",
	Description:      "Upload, transcode and HLS playback",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
