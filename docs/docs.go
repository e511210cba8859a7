// Package docs registers the swagger document served under /swagger. Keep it
// in step with the handler annotations (swag init -g cmd/api/main.go).
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
        "/datasets/{name}": {
            "get": {
                "tags": [
                    "Datasets"
                ],
                "summary": "Read a dataset",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "name",
                        "in": "path",
                        "required": true
                    }
                ]
            },
            "put": {
                "tags": [
                    "Datasets"
                ],
                "summary": "Replace a dataset",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "name",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object"
                            }
                        }
                    }
                ]
            }
        },
        "/logo": {
            "get": {
                "tags": [
                    "Datasets"
                ],
                "summary": "Read the branding logo",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "put": {
                "tags": [
                    "Datasets"
                ],
                "summary": "Store the branding logo",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.SaveLogoRequest"
                        }
                    }
                ]
            }
        },
        "/projects": {
            "get": {
                "tags": [
                    "Projects"
                ],
                "summary": "List projects",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "tags": [
                    "Projects"
                ],
                "summary": "Create project",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.CreateProjectRequest"
                        }
                    }
                ]
            }
        },
        "/projects/generate-code": {
            "post": {
                "tags": [
                    "Projects"
                ],
                "summary": "Preview project code",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.GenerateCodeRequest"
                        }
                    }
                ]
            }
        },
        "/projects/{code}": {
            "get": {
                "tags": [
                    "Projects"
                ],
                "summary": "Get project",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "code",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/projects/{code}/cost": {
            "get": {
                "tags": [
                    "Costing"
                ],
                "summary": "Cost a stored project",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "code",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/projects/{code}/feedback/request": {
            "post": {
                "tags": [
                    "Projects"
                ],
                "summary": "Request customer feedback",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "code",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/projects/{code}/feedback/verify": {
            "post": {
                "tags": [
                    "Projects"
                ],
                "summary": "Verify received feedback",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "code",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.VerifyFeedbackRequest"
                        }
                    }
                ]
            }
        },
        "/projects/{code}/tracking": {
            "put": {
                "tags": [
                    "Projects"
                ],
                "summary": "Update closeout checklist",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "code",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.UpdateTrackingRequest"
                        }
                    }
                ]
            }
        },
        "/projects/{code}/status": {
            "put": {
                "tags": [
                    "Projects"
                ],
                "summary": "Move project status",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "code",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.UpdateStatusRequest"
                        }
                    }
                ]
            }
        },
        "/costing/preview": {
            "post": {
                "tags": [
                    "Costing"
                ],
                "summary": "Cost an unsaved project",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.CostPreviewRequest"
                        }
                    }
                ]
            }
        },
        "/sync": {
            "post": {
                "tags": [
                    "Sync"
                ],
                "summary": "Sync with the master document",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "enum": [
                            "manual",
                            "visibility",
                            "connectivity"
                        ],
                        "type": "string",
                        "default": "manual",
                        "name": "trigger",
                        "in": "query"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/domain.SyncRequest"
                        }
                    }
                ]
            }
        },
        "/sync/push": {
            "post": {
                "tags": [
                    "Sync"
                ],
                "summary": "Upload the local store",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/domain.SyncRequest"
                        }
                    }
                ]
            }
        },
        "/sync/inbox": {
            "post": {
                "tags": [
                    "Sync"
                ],
                "summary": "Ingest the feedback inbox",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/domain.SyncRequest"
                        }
                    }
                ]
            }
        },
        "/sync/runs": {
            "get": {
                "tags": [
                    "Sync"
                ],
                "summary": "Recent sync runs",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/system/meta": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Connection state",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/system/connect": {
            "post": {
                "tags": [
                    "System"
                ],
                "summary": "Connect a cloud account",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.ConnectRequest"
                        }
                    }
                ]
            }
        },
        "/system/disconnect": {
            "post": {
                "tags": [
                    "System"
                ],
                "summary": "Disconnect the cloud account",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/feedback/unassigned": {
            "get": {
                "tags": [
                    "Feedback"
                ],
                "summary": "List unassigned feedback",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/feedback/unassigned/{id}/link": {
            "post": {
                "tags": [
                    "Feedback"
                ],
                "summary": "Attach unassigned feedback to a project",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.LinkFeedbackRequest"
                        }
                    }
                ]
            }
        },
        "/feedback/unassigned/{id}": {
            "delete": {
                "tags": [
                    "Feedback"
                ],
                "summary": "Discard unassigned feedback",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "ApiKeyAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        }
    },
    "definitions": {
        "domain.SyncRequest": {
            "type": "object",
            "properties": {
                "token": {
                    "type": "string"
                }
            }
        },
        "domain.ConnectRequest": {
            "type": "object",
            "properties": {
                "accessToken": {
                    "type": "string"
                },
                "idToken": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "clientId": {
                    "type": "string"
                }
            },
            "required": [
                "accessToken"
            ]
        },
        "domain.CreateProjectRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "clientName": {
                    "type": "string"
                },
                "jobName": {
                    "type": "string"
                }
            },
            "required": [
                "name",
                "clientName"
            ]
        },
        "domain.GenerateCodeRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                }
            },
            "required": [
                "name"
            ]
        },
        "domain.UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string",
                    "enum": [
                        "0",
                        "15",
                        "35",
                        "55",
                        "75",
                        "85",
                        "90",
                        "95",
                        "100"
                    ]
                }
            },
            "required": [
                "status"
            ]
        },
        "domain.VerifyFeedbackRequest": {
            "type": "object",
            "properties": {
                "verifiedBy": {
                    "type": "string"
                }
            },
            "required": [
                "verifiedBy"
            ]
        },
        "domain.LinkFeedbackRequest": {
            "type": "object",
            "properties": {
                "projectCode": {
                    "type": "string"
                },
                "token": {
                    "type": "string"
                }
            },
            "required": [
                "projectCode"
            ]
        },
        "domain.UpdateTrackingRequest": {
            "type": "object",
            "properties": {
                "qcSignedOff": {
                    "type": "boolean"
                },
                "deliveryConfirmed": {
                    "type": "boolean"
                },
                "paymentReceived": {
                    "type": "boolean"
                }
            }
        },
        "domain.SaveLogoRequest": {
            "type": "object",
            "properties": {
                "dataUrl": {
                    "type": "string"
                }
            },
            "required": [
                "dataUrl"
            ]
        },
        "domain.CostPreviewRequest": {
            "type": "object",
            "properties": {
                "project": {
                    "type": "object"
                },
                "framingCatalog": {
                    "type": "array",
                    "items": {
                        "type": "object"
                    }
                },
                "finishesCatalog": {
                    "type": "array",
                    "items": {
                        "type": "object"
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "x-api-key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "AE Works Ops API",
	Description:      "Local-first operations store with cloud master-document sync, feedback inbox ingestion and project costing.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
