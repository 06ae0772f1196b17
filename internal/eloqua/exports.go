package eloqua

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/sjson"
)

// ContactEmailField is the export statement for a contact's email address.
const ContactEmailField = "{{Contact.Field(C_EmailAddress)}}"

// ExportField names one column of an export and its field statement.
type ExportField struct {
	Name      string
	Statement string
}

// ExportDefinition describes a bulk export.
type ExportDefinition struct {
	Name   string
	Fields []ExportField
	Filter string
}

// CustomObjectField returns the statement for field fieldID of a CDO.
func CustomObjectField(cdoID, fieldID int) string {
	return fmt.Sprintf("{{CustomObject[%d].Field[%d]}}", cdoID, fieldID)
}

// CustomObjectCreatedAt returns the creation timestamp statement of a CDO.
func CustomObjectCreatedAt(cdoID int) string {
	return fmt.Sprintf("{{CustomObject[%d].CreatedAt}}", cdoID)
}

// CustomObjectUpdatedAt returns the update timestamp statement of a CDO.
func CustomObjectUpdatedAt(cdoID int) string {
	return fmt.Sprintf("{{CustomObject[%d].UpdatedAt}}", cdoID)
}

// ContactEmailExport exports every contact email address in the instance.
func ContactEmailExport() ExportDefinition {
	return ExportDefinition{
		Name:   "All Email Addresses",
		Fields: []ExportField{{Name: "emailAddress", Statement: ContactEmailField}},
	}
}

// JSON renders the definition as a request body.
func (d ExportDefinition) JSON() (string, error) {
	if len(d.Fields) == 0 {
		return "", errors.New("export definition has no fields")
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
	if d.Filter != "" {
		if body, err = sjson.Set(body, "filter", d.Filter); err != nil {
			return "", err
		}
	}
	return body, nil
}

// CreateContactExport defines a contact export and returns its URI.
func (c *Client) CreateContactExport(ctx context.Context, def ExportDefinition) (string, error) {
	return c.createExport(ctx, "/contacts/exports", def)
}

// CreateCustomObjectExport defines an export of CDO cdoID and returns its URI.
func (c *Client) CreateCustomObjectExport(ctx context.Context, cdoID int, def ExportDefinition) (string, error) {
	return c.createExport(ctx, fmt.Sprintf("/customObjects/%d/exports", cdoID), def)
}

func (c *Client) createExport(ctx context.Context, path string, def ExportDefinition) (string, error) {
	body, err := def.JSON()
	if err != nil {
		return "", fmt.Errorf("failed to build export %q: %w", def.Name, err)
	}
	b, err := c.bulk(ctx, path)
	if err != nil {
		return "", err
	}
	res, err := fetch(ctx, b.BodyBytes([]byte(body)).ContentType("application/json"), "create export "+def.Name)
	if err != nil {
		return "", err
	}
	uri := res.Get("uri").String()
	if uri == "" {
		return "", fmt.Errorf("failed to create export %s: response has no uri", def.Name)
	}
	return uri, nil
}

var pathEscaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

func escapePath(key string) string {
	return pathEscaper.Replace(key)
}
