package prompts

import (
	"bytes"
	"embed"
	"errors"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var templateFS embed.FS

// PersonaData parameterizes the examiner persona instruction.
type PersonaData struct {
	Course       string
	NumQuestions int
}

var (
	loadOnce    sync.Once
	loadErr     error
	personaTmpl *template.Template
)

func load() {
	content, err := templateFS.ReadFile("templates/persona.txt")
	if err != nil {
		loadErr = errors.New("failed to read persona template: " + err.Error())
		return
	}
	personaTmpl, err = template.New("persona").Parse(string(content))
	if err != nil {
		loadErr = errors.New("failed to parse persona template: " + err.Error())
	}
}

// Persona renders the fixed system instruction given to the reasoning
// service before every exchange.
func Persona(data PersonaData) (string, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return "", loadErr
	}
	var buf bytes.Buffer
	if err := personaTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
