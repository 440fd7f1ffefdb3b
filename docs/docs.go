// Package docs holds the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/main.go -o docs
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
        "/tournaments": {
            "get": {"tags": ["tournaments"], "summary": "List tournaments", "produces": ["application/json"],
                "parameters": [
                    {"type": "boolean", "name": "finished", "in": "query"},
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Create a tournament",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "tournament", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateTournamentInput"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/tournaments/{tournamentID}": {
            "get": {"tags": ["tournaments"], "summary": "Get a tournament with rounds, standing and ranking", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/tournaments/{tournamentID}/competitors": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Set competitors and pair round 1",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "tournamentID", "in": "path", "required": true},
                    {"name": "competitors", "in": "body", "required": true, "schema": {"type": "object", "properties": {"competitors": {"type": "array", "items": {"type": "string"}}}}}
                ],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/tournaments/{tournamentID}/duels/{duelID}": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["duels"], "summary": "Record the game wins of one competitor",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "tournamentID", "in": "path", "required": true},
                    {"type": "integer", "description": "duel id or 0", "name": "duelID", "in": "path", "required": true},
                    {"name": "result", "in": "body", "required": true, "schema": {"type": "object", "properties": {"competitor": {"type": "string"}, "wins": {"type": "integer"}}}}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/tournaments/{tournamentID}/results": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["duels"], "summary": "Record several duel results at once",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "tournamentID", "in": "path", "required": true},
                    {"name": "results", "in": "body", "required": true, "schema": {"type": "object", "properties": {"results": {"type": "array", "items": {"$ref": "#/definitions/services.DuelResult"}}}}}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/tournaments/{tournamentID}/rounds": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["rounds"], "summary": "Pair the next round", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "Finished"}, "201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/tournaments/{tournamentID}/finish": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Finish a tournament", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/tournaments/{tournamentID}/standing": {
            "get": {"tags": ["tournaments"], "summary": "Tournament standing", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/tournaments/{tournamentID}/ranking": {
            "get": {"tags": ["tournaments"], "summary": "Tournament ranking biased toward the standing", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/competitors": {
            "get": {"tags": ["competitors"], "summary": "All-time standing over every tournament", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/competitors/ranking": {
            "get": {"tags": ["competitors"], "summary": "All-time ranking over every duel ever played", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/competitors/{name}": {
            "get": {"tags": ["competitors"], "summary": "Duel history of a competitor", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/ws/tournaments/{tournamentID}": {
            "get": {"tags": ["live"], "summary": "Live events of a tournament",
                "parameters": [{"type": "integer", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"101": {"description": "Switching Protocols"}, "404": {"description": "Not Found"}}}
        }
    },
    "definitions": {
        "services.CreateTournamentInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "competitors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "services.DuelResult": {
            "type": "object",
            "properties": {
                "duel_id": {"type": "integer"},
                "a_wins": {"type": "integer"},
                "b_wins": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Swiss Pairings API",
	Description:      "Swiss-system tournaments: pairing, results, standings and PageRank ratings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
