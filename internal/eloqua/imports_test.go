package eloqua

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestImportDefinition_JSON(t *testing.T) {
	def := ImportDefinition{
		Name: "SYSTEM - KORE Membership CDO Import",
		Fields: []ExportField{
			{Name: "pk", Statement: CustomObjectField(13, 190)},
			{Name: "email", Statement: CustomObjectField(13, 191)},
		},
		IdentifierField: "pk",
	}

	body, err := def.JSON()
	require.NoError(t, err)
	assert.Equal(t, "pk", gjson.Get(body, "identifierFieldName").String())
	assert.Equal(t, "{{CustomObject[13].Field[191]}}", gjson.Get(body, "fields.email").String())
	assert.False(t, gjson.Get(body, "isSyncTriggeredOnImport").Bool())
	assert.True(t, gjson.Get(body, "isSyncTriggeredOnImport").Exists())
	assert.False(t, gjson.Get(body, "mapDataCards").Exists())
}

func TestImportDefinition_LinkContacts(t *testing.T) {
	def := ImportDefinition{
		Name:            "link",
		Fields:          []ExportField{{Name: "buyer_email_addr", Statement: CustomObjectField(14, 204)}},
		IdentifierField: "pk",
		LinkSourceField: "buyer_email_addr",
	}

	body, err := def.JSON()
	require.NoError(t, err)
	assert.True(t, gjson.Get(body, "mapDataCards").Bool())
	assert.Equal(t, "Contact", gjson.Get(body, "mapDataCardsEntityType").String())
	assert.Equal(t, "buyer_email_addr", gjson.Get(body, "mapDataCardsSourceField").String())
	assert.Equal(t, ContactEmailField, gjson.Get(body, "mapDataCardsEntityField").String())
}

func TestClient_CreateImportAndPush(t *testing.T) {
	var pushed string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bulk/2.0/customObjects/14/imports", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "pk", gjson.GetBytes(body, "identifierFieldName").String())
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"uri":"/customObjects/14/imports/88"}`))
	})
	mux.HandleFunc("/api/bulk/2.0/customObjects/14/imports/88/data", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		pushed = string(body)
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)

	uri, err := c.CreateCustomObjectImport(context.Background(), 14, ImportDefinition{
		Name:            "activity",
		Fields:          []ExportField{{Name: "pk", Statement: CustomObjectField(14, 197)}},
		IdentifierField: "pk",
	})
	require.NoError(t, err)
	assert.Equal(t, "/customObjects/14/imports/88", uri)

	err = c.PushImportData(context.Background(), uri, []map[string]string{{"pk": "1"}, {"pk": "2"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.Get(pushed, "#").Int())
	assert.Equal(t, "2", gjson.Get(pushed, "1.pk").String())
}
