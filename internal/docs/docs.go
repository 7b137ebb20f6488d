// Package docs registra la especificación OpenAPI servida en /swagger/*.
// Se mantiene junto a los godoc de los handlers; `swag init -g cmd/api/main.go -o internal/docs`
// la regenera desde ellos. router_test verifica que cada ruta montada figure acá.
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
                "tags": [
                    "ops"
                ],
                "summary": "Liveness",
                "responses": {
                    "200": {
                        "description": "ok"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "ops"
                ],
                "summary": "Métricas Prometheus",
                "responses": {
                    "200": {
                        "description": "text exposition"
                    }
                }
            }
        },
        "/pages/{page}/content": {
            "get": {
                "tags": [
                    "content"
                ],
                "summary": "Contenido persistido de una página",
                "parameters": [
                    {
                        "type": "string",
                        "name": "page",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "region_id => content"
                    },
                    "500": {
                        "description": "internal error"
                    }
                }
            }
        },
        "/sessions": {
            "post": {
                "tags": [
                    "content"
                ],
                "summary": "Abrir sesión de edición",
                "description": "Si el request trae identidad se publica de entrada.",
                "responses": {
                    "201": {
                        "description": "sesión"
                    }
                }
            }
        },
        "/sessions/{sessionID}": {
            "get": {
                "tags": [
                    "content"
                ],
                "summary": "Estado de la sesión",
                "parameters": [
                    {
                        "type": "string",
                        "name": "sessionID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "sesión"
                    },
                    "403": {
                        "description": "session belongs to another user"
                    },
                    "404": {
                        "description": "session not found"
                    }
                }
            },
            "delete": {
                "tags": [
                    "content"
                ],
                "summary": "Cerrar la sesión",
                "parameters": [
                    {
                        "type": "string",
                        "name": "sessionID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "closed"
                    },
                    "403": {
                        "description": "session belongs to another user"
                    },
                    "404": {
                        "description": "session not found"
                    }
                }
            }
        },
        "/sessions/{sessionID}/identity": {
            "put": {
                "tags": [
                    "content"
                ],
                "summary": "Login: publica la identidad del request",
                "parameters": [
                    {
                        "type": "string",
                        "name": "sessionID",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "sesión"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "session belongs to another user"
                    },
                    "404": {
                        "description": "session not found"
                    }
                }
            },
            "delete": {
                "tags": [
                    "content"
                ],
                "summary": "Logout: publica identidad vacía",
                "parameters": [
                    {
                        "type": "string",
                        "name": "sessionID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "sesión"
                    },
                    "403": {
                        "description": "session belongs to another user"
                    },
                    "404": {
                        "description": "session not found"
                    }
                }
            }
        },
        "/sessions/{sessionID}/pages/{page}/regions": {
            "post": {
                "tags": [
                    "content"
                ],
                "summary": "Registrar regiones editables de una página",
                "parameters": [
                    {
                        "type": "string",
                        "name": "sessionID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "page",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "regions: [{region_id, authored, multiline}]",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "regiones"
                    },
                    "400": {
                        "description": "invalid json / region_id requerido"
                    },
                    "403": {
                        "description": "session belongs to another user"
                    },
                    "404": {
                        "description": "session not found"
                    }
                }
            },
            "get": {
                "tags": [
                    "content"
                ],
                "summary": "Regiones registradas de una página",
                "parameters": [
                    {
                        "type": "string",
                        "name": "sessionID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "page",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "regiones"
                    },
                    "403": {
                        "description": "session belongs to another user"
                    },
                    "404": {
                        "description": "session not found"
                    }
                }
            }
        },
        "/sessions/{sessionID}/regions/{page}/{regionID}/focus": {
            "post": {
                "tags": [
                    "content"
                ],
                "summary": "Foco en una región",
                "parameters": [
                    {
                        "type": "string",
                        "name": "sessionID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "page",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "regionID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "show_hint / hint"
                    },
                    "403": {
                        "description": "region not editable / session belongs to another user"
                    },
                    "404": {
                        "description": "session / region not found"
                    }
                }
            }
        },
        "/sessions/{sessionID}/regions/{page}/{regionID}/input": {
            "put": {
                "tags": [
                    "content"
                ],
                "summary": "Texto actual de la región (sin escribir)",
                "parameters": [
                    {
                        "type": "string",
                        "name": "sessionID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "page",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "regionID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "content",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "región"
                    },
                    "400": {
                        "description": "invalid json"
                    },
                    "403": {
                        "description": "region not editable / session belongs to another user"
                    },
                    "404": {
                        "description": "session / region not found"
                    }
                }
            }
        },
        "/sessions/{sessionID}/regions/{page}/{regionID}/commit": {
            "post": {
                "tags": [
                    "content"
                ],
                "summary": "Confirmar la edición (blur)",
                "parameters": [
                    {
                        "type": "string",
                        "name": "sessionID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "page",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "regionID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "saved | unchanged | error"
                    },
                    "403": {
                        "description": "region not editable / session belongs to another user"
                    },
                    "404": {
                        "description": "session / region not found"
                    },
                    "409": {
                        "description": "commit already in flight"
                    }
                }
            }
        },
        "/sessions/{sessionID}/regions/{page}/{regionID}/key": {
            "post": {
                "tags": [
                    "content"
                ],
                "summary": "Tecla en una región",
                "description": "Enter sin Shift en región de una línea hace commit; Escape cancela.",
                "parameters": [
                    {
                        "type": "string",
                        "name": "sessionID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "page",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "regionID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "key, shift",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "saved | cancelled | ignored"
                    },
                    "400": {
                        "description": "invalid json"
                    },
                    "403": {
                        "description": "region not editable / session belongs to another user"
                    },
                    "404": {
                        "description": "session / region not found"
                    },
                    "409": {
                        "description": "commit already in flight"
                    }
                }
            }
        },
        "/sessions/{sessionID}/regions/{page}/{regionID}/cancel": {
            "post": {
                "tags": [
                    "content"
                ],
                "summary": "Descartar la edición y volver al baseline",
                "parameters": [
                    {
                        "type": "string",
                        "name": "sessionID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "page",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "regionID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "cancelled"
                    },
                    "403": {
                        "description": "region not editable / session belongs to another user"
                    },
                    "404": {
                        "description": "session / region not found"
                    },
                    "409": {
                        "description": "commit already in flight"
                    }
                }
            }
        },
        "/events": {
            "get": {
                "tags": [
                    "events"
                ],
                "summary": "Listar eventos",
                "parameters": [
                    {
                        "type": "string",
                        "name": "when",
                        "in": "query",
                        "description": "upcoming | past"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "today / upcoming / past"
                    },
                    "500": {
                        "description": "internal error"
                    }
                }
            },
            "post": {
                "tags": [
                    "events"
                ],
                "summary": "Crear evento",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "title, date (YYYY-MM-DD), time, notes",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "evento"
                    },
                    "400": {
                        "description": "invalid json / reglas de negocio"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                }
            }
        },
        "/events/{eventID}": {
            "get": {
                "tags": [
                    "events"
                ],
                "summary": "Obtener un evento",
                "parameters": [
                    {
                        "type": "string",
                        "name": "eventID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "evento"
                    },
                    "404": {
                        "description": "event not found"
                    }
                }
            }
        },
        "/events/{eventID}/fields/{field}": {
            "post": {
                "tags": [
                    "events"
                ],
                "summary": "Editar title o notes",
                "parameters": [
                    {
                        "type": "string",
                        "name": "eventID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "field",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "value; null = prompt descartado",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "saved | cancelled"
                    },
                    "400": {
                        "description": "invalid field / invalid json"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "forbidden"
                    },
                    "404": {
                        "description": "event not found"
                    },
                    "409": {
                        "description": "edit already in flight"
                    },
                    "502": {
                        "description": "event update failed"
                    }
                }
            }
        },
        "/forms/questions": {
            "post": {
                "tags": [
                    "forms"
                ],
                "summary": "Enviar una pregunta",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "event_id, name, email, question, comments",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "pregunta"
                    },
                    "400": {
                        "description": "invalid input"
                    },
                    "404": {
                        "description": "event not found"
                    }
                }
            }
        },
        "/forms/feedback": {
            "post": {
                "tags": [
                    "forms"
                ],
                "summary": "Enviar feedback",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "event_id, rating (1..5), notes, name, email",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "feedback"
                    },
                    "400": {
                        "description": "invalid input / rating"
                    },
                    "404": {
                        "description": "event not found"
                    },
                    "409": {
                        "description": "event has not started"
                    }
                }
            }
        },
        "/admin/events/strip-refreshments": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Quitar \"and Refreshments\" de las notas",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "report"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                }
            }
        },
        "/admin/events/seed": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Cargar el calendario base",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "report"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                }
            }
        },
        "/admin/forms/questions": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Preguntas recibidas",
                "parameters": [
                    {
                        "type": "string",
                        "name": "event_id",
                        "in": "query",
                        "description": "Filtrar por evento"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "preguntas"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                }
            }
        },
        "/admin/forms/feedback": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Feedback recibido",
                "parameters": [
                    {
                        "type": "string",
                        "name": "event_id",
                        "in": "query",
                        "description": "Filtrar por evento"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "feedback"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                }
            }
        },
        "/admin/relay": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Listar entradas del outbox",
                "parameters": [
                    {
                        "type": "string",
                        "name": "status",
                        "in": "query",
                        "description": "pending | retrying | done | failed | abandoned"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "entradas"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                }
            }
        },
        "/admin/relay/process": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Procesar el outbox ahora",
                "description": "Una pasada del procesador; respeta el backoff.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "report"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "forbidden"
                    }
                }
            }
        },
        "/admin/relay/{entryID}": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "Obtener una entrada",
                "parameters": [
                    {
                        "type": "string",
                        "name": "entryID",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "entrada"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "forbidden"
                    },
                    "404": {
                        "description": "relay entry not found"
                    }
                }
            }
        },
        "/admin/relay/{entryID}/retry": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Reintentar una entrada",
                "parameters": [
                    {
                        "type": "string",
                        "name": "entryID",
                        "in": "path",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "entrada"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "forbidden"
                    },
                    "404": {
                        "description": "relay entry not found"
                    },
                    "409": {
                        "description": "relay entry is in a terminal state"
                    }
                }
            }
        },
        "/admin/relay/{entryID}/abandon": {
            "post": {
                "tags": [
                    "admin"
                ],
                "summary": "Abandonar una entrada",
                "parameters": [
                    {
                        "type": "string",
                        "name": "entryID",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "description": "reason",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "entrada"
                    },
                    "400": {
                        "description": "invalid json"
                    },
                    "401": {
                        "description": "unauthorized"
                    },
                    "403": {
                        "description": "forbidden"
                    },
                    "404": {
                        "description": "relay entry not found"
                    },
                    "409": {
                        "description": "relay entry is in a terminal state"
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo guarda la info exportada de la spec.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "BCASCO Site API",
	Description:      "Edición inline de contenido, editor de eventos, formularios y relay hacia Sheets/email.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
