package eloqua

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/sjson"
)

// ImportDefinition describes a bulk import into a custom object.
type ImportDefinition struct {
	Name            string
	Fields          []ExportField // import column -> CDO field statement
	IdentifierField string
	// LinkSourceField, when set, links each row to the contact whose email
	// matches this import column.
	LinkSourceField string
}

// JSON renders the definition as a request body. Syncs are triggered
// explicitly, never on import.
func (d ImportDefinition) JSON() (string, error) {
	if len(d.Fields) == 0 {
		return "", errors.New("import definition has no fields")
	}
	body, err := sjson.Set(`{}`, "name", d.Name)
	if err != nil {
		return "", err
	}
	for _, f := range d.Fields {
		if body, err = sjson.Set(body, "fields."+escapePath(f.Name), f.Statement); err != nil {
			return "", err
		}
	}

	set := func(path string, value interface{}) {
		if err == nil {
			body, err = sjson.Set(body, path, value)
		}
	}
	set("identifierFieldName", d.IdentifierField)
	set("isSyncTriggeredOnImport", false)
	if d.LinkSourceField != "" {
		set("mapDataCards", true)
		set("mapDataCardsEntityType", "Contact")
		set("mapDataCardsSourceField", d.LinkSourceField)
		set("mapDataCardsEntityField", ContactEmailField)
		set("mapDataCardsCaseSensitiveMatch", false)
	}
	if err != nil {
		return "", err
	}
	return body, nil
}

// CreateCustomObjectImport defines an import into CDO cdoID and returns its URI.
func (c *Client) CreateCustomObjectImport(ctx context.Context, cdoID int, def ImportDefinition) (string, error) {
	body, err := def.JSON()
	if err != nil {
		return "", fmt.Errorf("failed to build import %q: %w", def.Name, err)
	}
	b, err := c.bulk(ctx, fmt.Sprintf("/customObjects/%d/imports", cdoID))
	if err != nil {
		return "", err
	}
	res, err := fetch(ctx, b.BodyBytes([]byte(body)).ContentType("application/json"), "create import "+def.Name)
	if err != nil {
		return "", err
	}
	uri := res.Get("uri").String()
	if uri == "" {
		return "", fmt.Errorf("failed to create import %s: response has no uri", def.Name)
	}
	return uri, nil
}

// PushImportData stages rows on an import definition.
func (c *Client) PushImportData(ctx context.Context, importURI string, rows []map[string]string) error {
	b, err := c.bulk(ctx, importURI+"/data")
	if err != nil {
		return err
	}
	_, err = fetch(ctx, b.BodyJSON(rows), fmt.Sprintf("push %d rows to %s", len(rows), importURI))
	return err
}
