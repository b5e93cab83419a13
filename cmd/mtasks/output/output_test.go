package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"mtasks/internal/application/dto"
)

func TestParseFormat(t *testing.T) {
	is := is.New(t)

	f, err := ParseFormat("yml")
	is.NoErr(err)
	is.Equal(f, FormatYAML)

	f, err = ParseFormat("")
	is.NoErr(err)
	is.Equal(f, FormatText)

	f, err = ParseFormat(" IDS ")
	is.NoErr(err)
	is.Equal(f, FormatID)

	_, err = ParseFormat("xml")
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "id, json, text, yaml"))
}

func TestFormatter_IDs(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	f := NewFormatter(FormatID, &buf)

	is.NoErr(f.Print([]dto.TaskDTO{{ID: "t1", Title: "A"}, {ID: "t2", Title: "B"}}))
	is.NoErr(f.Print(dto.SubTaskDTO{ID: "s1", Title: "Pack"}))
	is.Equal(buf.String(), "t1\nt2\ns1\n")

	buf.Reset()
	is.NoErr(f.Print("plain"))
	is.Equal(buf.String(), "plain\n")
}

func TestFormatter_JSON(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer

	err := NewFormatter(FormatJSON, &buf).Print(dto.SubTaskDTO{ID: "s1", Title: "Pack", Completed: true})
	is.NoErr(err)
	is.Equal(buf.String(), "{\n  \"id\": \"s1\",\n  \"title\": \"Pack\",\n  \"completed\": true\n}\n")
}

func TestFormatter_YAML(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer

	err := NewFormatter(FormatYAML, &buf).Print(dto.SubTaskDTO{ID: "s1", Title: "Pack"})
	is.NoErr(err)
	is.Equal(buf.String(), "id: s1\ntitle: Pack\ncompleted: false\n")
}

func TestPrinter_TaskLine(t *testing.T) {
	is := is.New(t)
	p := NewPrinter(&bytes.Buffer{})
	due := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	line := p.TaskLine(dto.TaskDTO{
		ID:            "0190f7a2-1c2b-7d3e-8f40-123456789abc",
		Title:         "Report",
		PriorityColor: "#FF3B30",
		DueDate:       &due,
		IsOverdue:     true,
		SubTasks:      []dto.SubTaskDTO{{ID: "a", Completed: true}, {ID: "b"}},
	})
	is.True(strings.Contains(line, "[ ]"))
	is.True(strings.Contains(line, "Report"))
	is.True(strings.Contains(line, "56789abc"))
	is.True(strings.Contains(line, "2026-01-02 (overdue)"))
	is.True(strings.Contains(line, "1/2"))
}

func TestPrinter_QuietSuppressesInfo(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.SetQuiet(true)

	p.Info("hidden")
	p.Subtle("hidden")
	is.Equal(buf.Len(), 0)

	p.Println("shown")
	is.Equal(buf.String(), "shown\n")
}

func TestShortID(t *testing.T) {
	is := is.New(t)
	is.Equal(ShortID("abc"), "abc")
	is.Equal(ShortID("0190f7a2-1c2b-7d3e-8f40-123456789abc"), "56789abc")
}
