package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/deppfellow/rentals-api/internal/resource"
	"github.com/deppfellow/rentals-api/internal/server"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const openAPIUIFile = "openapi.html"

// OpenAPIHandler serves the API reference UI and the OpenAPI document it
// renders. The document is generated from the resource registry.
type OpenAPIHandler struct {
	Handler
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// ServeOpenAPIUI serves <static dir>/openapi.html with caching disabled.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	templateBytes, err := os.ReadFile(filepath.Join(h.server.Config.Server.StaticDir, openAPIUIFile))

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTML(http.StatusOK, string(templateBytes)); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}

// ServeSpec writes the OpenAPI 3 document describing every registered
// resource.
func (h *OpenAPIHandler) ServeSpec(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.JSON(http.StatusOK, openAPIDocument(h.server.Registry))
}

type object = map[string]interface{}

// openAPIDocument builds the document. A Caser is stateful, so each call
// gets its own.
func openAPIDocument(registry *resource.Registry) object {
	title := cases.Title(language.Spanish)
	paths := object{}
	schemas := object{
		"Error":   errorSchema(),
		"Message": messageSchema(),
	}
	var tags []object

	for _, def := range registry.All() {
		tag := title.String(def.Name)
		tags = append(tags, object{"name": tag})

		schemaName := title.String(def.Path)
		schemas[schemaName] = documentSchema(def)
		ref := "#/components/schemas/" + schemaName

		paths["/"+def.Path] = object{
			"post": object{
				"tags":        []string{tag},
				"summary":     fmt.Sprintf("Crear %s", def.Name),
				"requestBody": jsonBody(ref, def),
				"responses": object{
					"201": jsonResponse("Creado", ref),
					"400": jsonResponse(def.MissingFieldsMessage(), "#/components/schemas/Error"),
				},
			},
		}

		paths["/"+def.Path+"/{id}"] = object{
			"parameters": []object{idParameter()},
			"get": object{
				"tags":    []string{tag},
				"summary": fmt.Sprintf("Obtener %s", def.Name),
				"responses": object{
					"200": jsonResponse("OK", ref),
					"404": jsonResponse(def.NotFoundMessage(), "#/components/schemas/Error"),
				},
			},
			"put": object{
				"tags":        []string{tag},
				"summary":     fmt.Sprintf("Actualizar %s", def.Name),
				"requestBody": jsonBody(ref, nil),
				"responses": object{
					"200": jsonResponse(def.UpdatedMessage(), "#/components/schemas/Message"),
					"400": jsonResponse("Petición inválida", "#/components/schemas/Error"),
					"404": jsonResponse(def.NotFoundMessage(), "#/components/schemas/Error"),
				},
			},
			"delete": object{
				"tags":    []string{tag},
				"summary": fmt.Sprintf("Eliminar %s", def.Name),
				"responses": object{
					"200": jsonResponse(def.DeletedMessage(), "#/components/schemas/Message"),
					"404": jsonResponse(def.NotFoundMessage(), "#/components/schemas/Error"),
				},
			},
		}
	}

	return object{
		"openapi": "3.0.3",
		"info": object{
			"title":   "Rentals API",
			"version": "1.0.0",
		},
		"tags":  tags,
		"paths": paths,
		"components": object{
			"schemas": schemas,
		},
	}
}

func documentSchema(def *resource.Definition) object {
	properties := object{
		"id": object{"type": "string", "readOnly": true},
	}
	for _, f := range def.Required {
		properties[f.Name] = object{}
	}
	for _, d := range def.Defaults {
		if _, ok := properties[d.Field]; !ok {
			properties[d.Field] = object{}
		}
	}
	for _, r := range def.Rules {
		if r.Numeric {
			properties[r.Field] = object{"type": "number", "description": r.Message}
		}
	}

	schema := object{
		"type":       "object",
		"required":   def.RequiredNames(),
		"properties": properties,
	}
	if def.Example != nil {
		schema["example"] = def.Example
	}
	return schema
}

func errorSchema() object {
	return object{
		"type": "object",
		"properties": object{
			"code":     object{"type": "string"},
			"message":  object{"type": "string"},
			"status":   object{"type": "integer"},
			"override": object{"type": "boolean"},
			"errors": object{
				"type": "array",
				"items": object{
					"type": "object",
					"properties": object{
						"field": object{"type": "string"},
						"error": object{"type": "string"},
					},
				},
			},
		},
	}
}

func messageSchema() object {
	return object{
		"type": "object",
		"properties": object{
			"message": object{"type": "string"},
		},
	}
}

func idParameter() object {
	return object{
		"name":     "id",
		"in":       "path",
		"required": true,
		"schema":   object{"type": "string"},
	}
}

func jsonBody(ref string, def *resource.Definition) object {
	content := object{"schema": object{"$ref": ref}}
	if def != nil && def.Example != nil {
		content["example"] = def.Example
	}
	return object{
		"required": true,
		"content":  object{"application/json": content},
	}
}

func jsonResponse(description, ref string) object {
	return object{
		"description": description,
		"content": object{
			"application/json": object{
				"schema": object{"$ref": ref},
			},
		},
	}
}
