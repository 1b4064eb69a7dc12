//go:build !windows && !darwin

package autostart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

var desktopTemplate = template.Must(template.New("desktop").Parse(`[Desktop Entry]
Type=Application
Name={{.Name}}
Exec={{.Exec}}
Terminal=false
X-GNOME-Autostart-enabled=true
`))

// defaultLocation is $XDG_CONFIG_HOME/autostart/<name>.desktop, with
// $XDG_CONFIG_HOME defaulting to ~/.config.
func defaultLocation(name string) (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "autostart", name+".desktop"), nil
}

func render(entry Entry) ([]byte, error) {
	args := make([]string, 0, len(entry.Exec))
	for _, arg := range entry.Exec {
		args = append(args, quoteExecArg(arg))
	}

	var buf bytes.Buffer
	err := desktopTemplate.Execute(&buf, struct{ Name, Exec string }{
		Name: singleLine(entry.DisplayName),
		Exec: strings.Join(args, " "),
	})
	return buf.Bytes(), err
}

// quoteExecArg quotes one argument of a desktop entry Exec key. Field codes
// start with %, so a literal percent sign is doubled.
func quoteExecArg(arg string) string {
	arg = strings.ReplaceAll(arg, "%", "%%")
	if arg != "" && !strings.ContainsAny(arg, " \t\n\"'\\><~|&;$*?#()`") {
		return arg
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range arg {
		if strings.ContainsRune("\"`$\\", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
