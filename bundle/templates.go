package bundle

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"cbundle/config"
	"cbundle/storage"
)

// Values is what export name template can use.
type Values struct {
	Context string
	Case    string
	CaseID  string
	Type    string
	Date    string
	Pages   int
}

func expandTemplate(name config.TemplateFieldName, field string, c *storage.Case, pages int, now time.Time) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context: string(name),
		Case:    c.Name,
		CaseID:  c.ID,
		Type:    c.Type.String(),
		Date:    now.Format("2006-01-02"),
		Pages:   pages,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
