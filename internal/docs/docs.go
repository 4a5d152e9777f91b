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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["Authentication"], "summary": "Register a new user",
            "parameters": [{"in": "body", "name": "registerRequest", "required": true, "schema": {"$ref": "#/definitions/docs.RegisterRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/docs.AuthResponse"}}, "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}}}},
        "/auth/login": {"post": {"tags": ["Authentication"], "summary": "Authenticate a user",
            "parameters": [{"in": "body", "name": "loginRequest", "required": true, "schema": {"$ref": "#/definitions/docs.LoginRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.AuthResponse"}}, "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}}}},
        "/auth/me": {"get": {"tags": ["Authentication"], "summary": "Get the current user", "security": [{"BearerAuth": []}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.MeResponse"}}}}},
        "/auth/google/login": {"get": {"tags": ["Authentication"], "summary": "Start Google sign-in", "responses": {"307": {"description": "Redirect"}}}},
        "/auth/google/callback": {"get": {"tags": ["Authentication"], "summary": "Complete Google sign-in",
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.AuthResponse"}}, "401": {"description": "State mismatch or missing code", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}}}},
        "/categories": {
            "get": {"tags": ["Categories"], "summary": "List categories", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.APIResponse"}}}},
            "post": {"tags": ["Categories"], "summary": "Create a category", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/docs.APIResponse"}}}}},
        "/categories/{slug}": {"get": {"tags": ["Categories"], "summary": "Get a category by slug",
            "parameters": [{"in": "path", "name": "slug", "type": "string", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.APIResponse"}}}}},
        "/documents": {
            "get": {"tags": ["Documents"], "summary": "List approved public documents",
                "parameters": [
                    {"in": "query", "name": "category", "type": "string"},
                    {"in": "query", "name": "uploader", "type": "integer"},
                    {"in": "query", "name": "format", "type": "string"},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "dateField", "type": "string", "enum": ["createdAt", "updatedAt"]},
                    {"in": "query", "name": "startDate", "type": "string"},
                    {"in": "query", "name": "endDate", "type": "string"},
                    {"in": "query", "name": "sortBy", "type": "string", "enum": ["createdAt", "viewCount", "downloadCount", "favoriteCount", "averageRating"]},
                    {"in": "query", "name": "sortOrder", "type": "string", "enum": ["asc", "desc"]},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.PaginatedResponse"}}}},
            "post": {"tags": ["Documents"], "summary": "Upload a document", "security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"],
                "parameters": [
                    {"in": "formData", "name": "title", "type": "string", "required": true},
                    {"in": "formData", "name": "description", "type": "string"},
                    {"in": "formData", "name": "tags", "type": "string"},
                    {"in": "formData", "name": "categoryId", "type": "integer"},
                    {"in": "formData", "name": "file", "type": "file", "required": true},
                    {"in": "formData", "name": "thumbnail", "type": "file"}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/docs.APIResponse"}}, "400": {"description": "File type not allowed", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}}}},
        "/documents/featured": {"get": {"tags": ["Documents"], "summary": "List featured documents", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.PaginatedResponse"}}}}},
        "/documents/mine": {"get": {"tags": ["Documents"], "summary": "List the caller's uploads", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.PaginatedResponse"}}}}},
        "/documents/{idOrSlug}": {"get": {"tags": ["Documents"], "summary": "Get a document by id or slug",
            "parameters": [{"in": "path", "name": "idOrSlug", "type": "string", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.APIResponse"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}}}},
        "/documents/{id}": {
            "put": {"tags": ["Documents"], "summary": "Update a document's metadata", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.APIResponse"}}}},
            "delete": {"tags": ["Documents"], "summary": "Delete a document", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.MessageResponse"}}}}},
        "/documents/{id}/download": {"get": {"tags": ["Documents"], "summary": "Download a document", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "File stream"}, "302": {"description": "Redirect to the blob"}}}},
        "/documents/{id}/favorite": {"post": {"tags": ["Engagement"], "summary": "Toggle a favorite", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.APIResponse"}}}}},
        "/documents/{id}/rating": {
            "put": {"tags": ["Engagement"], "summary": "Rate a document", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "Replaced"}, "201": {"description": "Created"}}},
            "get": {"tags": ["Engagement"], "summary": "Get the caller's rating", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not rated"}}},
            "delete": {"tags": ["Engagement"], "summary": "Remove the caller's rating", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/documents/{id}/ratings": {"get": {"tags": ["Engagement"], "summary": "List ratings", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.PaginatedResponse"}}}}},
        "/documents/{id}/ratings/distribution": {"get": {"tags": ["Engagement"], "summary": "Star distribution", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/documents/{id}/comments": {
            "get": {"tags": ["Engagement"], "summary": "List comments", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}, {"in": "query", "name": "sort", "type": "string", "enum": ["asc", "desc"]}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.PaginatedResponse"}}}},
            "post": {"tags": ["Engagement"], "summary": "Comment or reply", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"201": {"description": "Created"}}}},
        "/comments/{id}": {
            "put": {"tags": ["Engagement"], "summary": "Edit a comment", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Engagement"], "summary": "Soft-delete a comment", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/comments/{id}/report": {"post": {"tags": ["Engagement"], "summary": "Report a comment", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Already reported"}}}},
        "/admin/documents": {"get": {"tags": ["Admin"], "summary": "List documents in any status", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.PaginatedResponse"}}}}},
        "/admin/documents/{id}/approve": {"post": {"tags": ["Admin"], "summary": "Approve a pending document", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Not pending"}}}},
        "/admin/documents/{id}/reject": {"post": {"tags": ["Admin"], "summary": "Reject a pending document", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Not pending"}}}},
        "/admin/documents/{id}/feature": {
            "post": {"tags": ["Admin"], "summary": "Feature a document", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Admin"], "summary": "Unfeature a document", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/me/favorites": {"get": {"tags": ["Engagement"], "summary": "List the caller's favorites", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.PaginatedResponse"}}}}},
        "/me/views": {"get": {"tags": ["History"], "summary": "List the caller's views", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.PaginatedResponse"}}}}},
        "/me/downloads": {"get": {"tags": ["History"], "summary": "List the caller's downloads", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.PaginatedResponse"}}}}},
        "/notifications": {
            "get": {"tags": ["Notifications"], "summary": "List notifications", "security": [{"BearerAuth": []}], "parameters": [{"in": "query", "name": "unreadOnly", "type": "boolean"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.PaginatedResponse"}}}},
            "delete": {"tags": ["Notifications"], "summary": "Delete every notification", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.CountResponse"}}}}},
        "/notifications/unread-count": {"get": {"tags": ["Notifications"], "summary": "Count unread notifications", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.CountResponse"}}}}},
        "/notifications/read-all": {"post": {"tags": ["Notifications"], "summary": "Mark every notification read", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.CountResponse"}}}}},
        "/notifications/{id}/read": {"post": {"tags": ["Notifications"], "summary": "Mark read", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/notifications/{id}/unread": {"post": {"tags": ["Notifications"], "summary": "Mark unread", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/notifications/{id}": {"delete": {"tags": ["Notifications"], "summary": "Delete a notification", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "docs.APIResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}, "data": {}, "requestId": {"type": "string"}}},
        "docs.PaginatedData": {"type": "object", "properties": {"totalItems": {"type": "integer"}, "totalPages": {"type": "integer"}, "currentPage": {"type": "integer"}, "items": {"type": "array", "items": {}}}},
        "docs.PaginatedResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "data": {"$ref": "#/definitions/docs.PaginatedData"}}},
        "docs.ErrorDetail": {"type": "object", "properties": {"type": {"type": "string"}, "code": {"type": "string"}, "details": {"type": "object", "additionalProperties": {"type": "string"}}}},
        "docs.ErrorResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}, "error": {"$ref": "#/definitions/docs.ErrorDetail"}, "requestId": {"type": "string"}}},
        "docs.MessageResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}}},
        "docs.CountResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "data": {"type": "object", "additionalProperties": {"type": "integer"}}}},
        "docs.RegisterRequest": {"type": "object", "required": ["name", "email", "password"], "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}},
        "docs.LoginRequest": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "docs.UserProfile": {"type": "object", "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string", "enum": ["admin", "uploader", "member"]}}},
        "docs.TokenData": {"type": "object", "properties": {"token": {"type": "string"}, "expiresAt": {"type": "integer"}, "user": {"$ref": "#/definitions/docs.UserProfile"}}},
        "docs.AuthResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}, "data": {"$ref": "#/definitions/docs.TokenData"}}},
        "docs.MeResponse": {"type": "object", "properties": {"success": {"type": "boolean"}, "data": {"$ref": "#/definitions/docs.UserProfile"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Document Library API",
	Description:      "Upload, moderate, discover and discuss documents.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
