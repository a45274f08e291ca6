package handler

import (
	"testing"

	"github.com/deppfellow/rentals-api/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPIDocumentTags(t *testing.T) {
	doc := openAPIDocument(resource.Default())

	tags, ok := doc["tags"].([]object)
	require.True(t, ok)
	require.Len(t, tags, 10)

	assert.Equal(t, "Usuario", tags[0]["name"])
	assert.Equal(t, "Ticket De Soporte", tags[8]["name"])
}

func TestOpenAPIDocumentSchemas(t *testing.T) {
	doc := openAPIDocument(resource.Default())

	schemas := doc["components"].(object)["schemas"].(object)

	resenas, ok := schemas["Resenas"].(object)
	require.True(t, ok)
	assert.Equal(t, []string{"usuario", "producto", "calificacion", "comentario"}, resenas["required"])

	props := resenas["properties"].(object)
	assert.Equal(t, "number", props["calificacion"].(object)["type"])

	usuarios := schemas["Usuarios"].(object)
	assert.Contains(t, usuarios["properties"].(object), "fechaRegistro")
}

func TestOpenAPIDocumentResponses(t *testing.T) {
	doc := openAPIDocument(resource.Default())

	item := doc["paths"].(object)["/usuarios/{id}"].(object)
	get := item["get"].(object)
	notFound := get["responses"].(object)["404"].(object)

	assert.Equal(t, "Usuario no encontrado", notFound["description"])
}
