package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OpenAPI serves the API description with servers[0] pointed at the origin
// of the incoming request, so the document works unchanged behind any proxy.
func (h *Handlers) OpenAPI(c *gin.Context) {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	origin := scheme + "://" + c.Request.Host

	c.JSON(http.StatusOK, openAPIDocument(origin))
}

func openAPIDocument(origin string) gin.H {
	jobSchema := gin.H{
		"type": "object",
		"properties": gin.H{
			"id":           gin.H{"type": "string", "format": "uuid"},
			"status":       gin.H{"type": "string", "enum": []string{"PENDING", "PROCESSING", "COMPLETED", "FAILED"}},
			"documentType": gin.H{"type": "string"},
			"email":        gin.H{"type": "string", "format": "email"},
			"fileName":     gin.H{"type": "string"},
			"mimeType":     gin.H{"type": "string"},
			"ocrResult":    gin.H{"type": "string", "nullable": true},
			"errorMessage": gin.H{"type": "string", "nullable": true},
			"createdAt":    gin.H{"type": "string", "format": "date-time"},
			"updatedAt":    gin.H{"type": "string", "format": "date-time"},
			"processedAt":  gin.H{"type": "string", "format": "date-time", "nullable": true},
		},
	}

	idParam := gin.H{
		"name":     "id",
		"in":       "path",
		"required": true,
		"schema":   gin.H{"type": "string", "format": "uuid"},
	}

	return gin.H{
		"openapi": "3.0.3",
		"info": gin.H{
			"title":       "Document OCR Service",
			"description": "Asynchronous document OCR with semantic enrichment.",
			"version":     "1.0.0",
		},
		"servers": []gin.H{{"url": origin}},
		"paths": gin.H{
			"/api/upload": gin.H{
				"post": gin.H{
					"summary": "Upload a document for OCR",
					"requestBody": gin.H{
						"required": true,
						"content": gin.H{
							"multipart/form-data": gin.H{
								"schema": gin.H{
									"type":     "object",
									"required": []string{"file", "documentType", "email"},
									"properties": gin.H{
										"file":            gin.H{"type": "string", "format": "binary"},
										"documentType":    gin.H{"type": "string"},
										"email":           gin.H{"type": "string", "format": "email"},
										"callbackWebhook": gin.H{"type": "string", "format": "uri"},
									},
								},
							},
						},
					},
					"responses": gin.H{
						"201": gin.H{"description": "Job created"},
						"400": gin.H{"description": "Validation failed"},
					},
				},
			},
			"/api/status/{id}": gin.H{
				"get": gin.H{
					"summary":    "Poll job status",
					"parameters": []gin.H{idParam},
					"responses": gin.H{
						"200": gin.H{
							"description": "Job",
							"content":     gin.H{"application/json": gin.H{"schema": jobSchema}},
						},
						"400": gin.H{"description": "Malformed job ID"},
						"404": gin.H{"description": "Job not found"},
					},
				},
			},
			"/api/admin/stats": gin.H{
				"get": gin.H{
					"summary":   "Processing statistics",
					"responses": gin.H{"200": gin.H{"description": "Stats"}},
				},
			},
			"/api/admin/jobs": gin.H{
				"get": gin.H{
					"summary": "List jobs",
					"parameters": []gin.H{
						{"name": "status", "in": "query", "schema": gin.H{"type": "string"}},
						{"name": "limit", "in": "query", "schema": gin.H{"type": "integer"}},
						{"name": "offset", "in": "query", "schema": gin.H{"type": "integer"}},
					},
					"responses": gin.H{"200": gin.H{"description": "Job page"}},
				},
			},
			"/api/admin/jobs/{id}": gin.H{
				"get": gin.H{
					"summary":    "Get one job",
					"parameters": []gin.H{idParam},
					"responses": gin.H{
						"200": gin.H{"description": "Job"},
						"404": gin.H{"description": "Job not found"},
					},
				},
				"delete": gin.H{
					"summary": "Delete a job",
					"parameters": []gin.H{
						idParam,
						{"name": "force", "in": "query", "schema": gin.H{"type": "boolean"}},
					},
					"responses": gin.H{
						"200": gin.H{"description": "Deleted"},
						"400": gin.H{"description": "Job is processing and force is not set"},
						"404": gin.H{"description": "Job not found"},
					},
				},
				"patch": gin.H{
					"summary":    "Reset or fail a job",
					"parameters": []gin.H{idParam},
					"requestBody": gin.H{
						"content": gin.H{
							"application/json": gin.H{
								"schema": gin.H{
									"type": "object",
									"properties": gin.H{
										"status":       gin.H{"type": "string", "enum": []string{"PENDING", "FAILED"}},
										"errorMessage": gin.H{"type": "string"},
									},
								},
							},
						},
					},
					"responses": gin.H{
						"200": gin.H{"description": "Updated job"},
						"400": gin.H{"description": "Invalid status"},
					},
				},
			},
			"/api/health": gin.H{
				"get": gin.H{
					"summary":   "Service health",
					"responses": gin.H{"200": gin.H{"description": "Healthy"}},
				},
			},
		},
	}
}
