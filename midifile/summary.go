package midifile

import (
	"io"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/ossrs/go-oryx-lib/errors"
)

var summaryTemplate = template.Must(template.New("summary").Funcs(sprig.TxtFuncMap()).Parse(
	`{{ printf "%.2f" .Tempo }} bpm, {{ .PPQN }} ppqn, {{ len .Rows }} tracks, {{ .Hits }} hits, {{ .Length }} ticks
{{ range .Rows -}}
{{ printf "%3d" .Number }}  {{ .Name | default "(unnamed)" | trunc 24 | printf "%-24s" }}  {{ .Hits }} {{ if eq .Hits 1 }}hit{{ else }}hits{{ end }}
{{ end -}}
`))

type (
	summary struct {
		Tempo  float64
		PPQN   int
		Hits   int
		Length uint32
		Rows   []summaryRow
	}

	summaryRow struct {
		Number uint8
		Name   string
		Hits   int
	}
)

// WriteSummary writes a human readable overview of an export: the note
// number of every track and how many times it is hit.
func WriteSummary(w io.Writer, e Export) error {
	s := summary{Tempo: e.Tempo, PPQN: e.PPQN}
	hits := map[uint8]int{}
	for _, ev := range e.Events {
		if ev.On {
			hits[ev.Key]++
			s.Hits++
		}
		s.Length = max(s.Length, ev.Time)
	}
	for _, t := range e.Tracks {
		n, ok := e.Mapping.Note(t.ID)
		if !ok {
			continue
		}
		s.Rows = append(s.Rows, summaryRow{Number: n, Name: t.Name, Hits: hits[n]})
	}
	if err := summaryTemplate.Execute(w, s); err != nil {
		return errors.Wrapf(err, "write summary")
	}
	return nil
}
