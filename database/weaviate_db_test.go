package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docqa-be/types"
)

func TestWeaviateClassName(t *testing.T) {
	assert.Equal(t, "Default_collection", weaviateClassName("default_collection"))
	assert.Equal(t, "Document", weaviateClassName("Document"))
	assert.Equal(t, "Document", weaviateClassName(""))
}

func TestBuildWhereFilter(t *testing.T) {
	assert.Nil(t, buildWhereFilter(types.Filter{}))

	single := buildWhereFilter(types.Filter{DatabaseID: "db1"}).Build()
	assert.Equal(t, []string{"databaseId"}, single.Path)
	assert.Equal(t, "Equal", single.Operator)

	both := buildWhereFilter(types.Filter{DatabaseID: "db1", Source: "http://a"}).Build()
	assert.Equal(t, "And", both.Operator)
	require.Len(t, both.Operands, 2)
	assert.Equal(t, []string{"databaseId"}, both.Operands[0].Path)
	assert.Equal(t, []string{"source"}, both.Operands[1].Path)
}

func TestDocumentClass(t *testing.T) {
	class := documentClass("Docs")
	assert.Equal(t, "none", class.Vectorizer)
	require.Len(t, class.Properties, 3)
	assert.Equal(t, "field", class.Properties[1].Tokenization)
	assert.Equal(t, "field", class.Properties[2].Tokenization)
}
