package diagfmt

import (
	"encoding/json"
	"io"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/diag"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/source"
)

type jsonNote struct {
	Path    string `json:"path"`
	Line    uint32 `json:"line"`
	Message string `json:"message"`
}

type jsonDiagnostic struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Path     string     `json:"path"`
	Line     uint32     `json:"line"`
	Message  string     `json:"message"`
	Notes    []jsonNote `json:"notes,omitempty"`
}

// JSON renders diagnostics as a JSON array, one object per diagnostic.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	out := make([]jsonDiagnostic, 0, bag.Len())
	for _, d := range bag.Items() {
		jd := jsonDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Path:     fs.Get(d.Primary.File).Path,
			Line:     d.Primary.Line,
			Message:  d.Message,
		}
		for _, n := range d.Notes {
			jd.Notes = append(jd.Notes, jsonNote{
				Path:    fs.Get(n.Pos.File).Path,
				Line:    n.Pos.Line,
				Message: n.Msg,
			})
		}
		out = append(out, jd)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
