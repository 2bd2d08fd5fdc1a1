package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			if fs == nil {
				return result
			}
			fs.VisitAll(func(f *flag.Flag) {
				result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
			})
			return result
		},
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	return help
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	if err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of); err != nil {
		log.Printf("error rendering help template: %v", err)
		return "", err
	}
	return buf.String(), nil
}

// usageFunc prints the command's help template for -h.
func usageFunc(of HelpData) func() {
	return func() {
		fmt.Fprint(os.Stderr, (&UsageError{of: of}).Error())
	}
}

func (r *root) Template() string {
	return "root.txt"
}

func (c *viewCmd) Template() string {
	return "view.txt"
}

func (c *snapshotCmd) Template() string {
	return "snapshot.txt"
}

func (c *exportCmd) Template() string {
	return "export.txt"
}

func (c *importCmd) Template() string {
	return "import.txt"
}

func (c *addCmd) Template() string {
	return "add.txt"
}

func (c *removeCmd) Template() string {
	return "remove.txt"
}

func (c *listCmd) Template() string {
	return "list.txt"
}

func (c *labelsCmd) Template() string {
	return "labels.txt"
}

func (c *projectCmd) Template() string {
	return "project.txt"
}

func (c *locateCmd) Template() string {
	return "locate.txt"
}

func (c *monitorsCmd) Template() string {
	return "monitors.txt"
}

func (c *configCmd) Template() string {
	return "config.txt"
}

func (c *interactiveCmd) Template() string {
	return "interactive.txt"
}
