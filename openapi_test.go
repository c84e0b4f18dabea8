package restcall

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOpenAPI(t *testing.T) {
	doc, err := GenerateOpenAPI("users", "1.0.0", usersAPI{})
	require.NoError(t, err)
	require.Equal(t, "users", doc.Info.Title)

	item := doc.Paths["/users/{id}"]
	require.NotNil(t, item)
	require.NotNil(t, item.Get)
	require.NotNil(t, item.Delete)
	require.Equal(t, "usersAPI.Get", item.Get.OperationID)
	require.Len(t, item.Get.Parameters, 1)
	param := item.Get.Parameters[0].Value
	require.Equal(t, "id", param.Name)
	require.Equal(t, "path", param.In)
	require.True(t, param.Required)

	list := doc.Paths["/users"]
	require.NotNil(t, list)
	require.NotNil(t, list.Get)
	require.Len(t, list.Get.Parameters, 1)
	require.Equal(t, "query", list.Get.Parameters[0].Value.In)
	require.Equal(t, "page", list.Get.Parameters[0].Value.Name)

	require.NotNil(t, list.Post)
	require.NotNil(t, list.Post.RequestBody)
	require.Contains(t, list.Post.RequestBody.Value.Content, "application/json")

	// The document must serialize cleanly.
	_, err = json.Marshal(doc)
	require.NoError(t, err)
}

func TestGenerateOpenAPIPropagatesCompileErrors(t *testing.T) {
	type broken struct {
		Get func() error `call:"GET /users/{id}"`
	}
	_, err := GenerateOpenAPI("broken", "1.0.0", broken{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken.Get")
}

func TestGenerateOpenAPIAcceptsPointers(t *testing.T) {
	doc, err := GenerateOpenAPI("users", "1.0.0", &usersAPI{})
	require.NoError(t, err)
	require.NotNil(t, doc.Paths["/users/{id}"])
}
