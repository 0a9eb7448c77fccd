package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/chrsbats/slip/cmd/slip/cmd"
)

func writeProgram(t *testing.T, doc string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "program.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEvalPrintsResult(t *testing.T) {
	path := writeProgram(t, `{"exprs":[{"terms":[{"term":"lit","kind":"int","value":"42"}]}]}`)

	c := cmd.New([]string{"eval", path})
	var out bytes.Buffer
	c.SetOut(&out)
	err := c.Execute()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(strings.Contains(out.String(), "42")))
}

func TestRunDrainsEffects(t *testing.T) {
	doc := `{
		"exprs": [{
			"terms": [
				{"term":"getpath","segments":[{"seg":"name","text":"emit"}]},
				{"term":"lit","kind":"string","value":"topic"},
				{"term":"lit","kind":"int","value":"7"}
			]
		}]
	}`
	path := writeProgram(t, doc)

	c := cmd.New([]string{"run", path})
	var out bytes.Buffer
	c.SetOut(&out)
	err := c.Execute()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(strings.Contains(out.String(), "topic")))
}

func TestTestReportsAllPassing(t *testing.T) {
	doc := `{
		"exprs": [
			{"terms": [
				{"term":"setpath","segments":[{"seg":"name","text":"t1"}]},
				{"term":"getpath","segments":[{"seg":"name","text":"test"}]},
				{"term":"lit","kind":"string","value":"passes"},
				{"term":"code","body":{"exprs":[{"terms":[{"term":"lit","kind":"bool","value":"true"}]}]}}
			]},
			{"terms": [
				{"term":"getpath","segments":[{"seg":"name","text":"test-all"}]},
				{"term":"list","elts":[
					{"terms":[{"term":"getpath","segments":[{"seg":"name","text":"t1"}]}]}
				]}
			]}
		]
	}`
	path := writeProgram(t, doc)

	c := cmd.New([]string{"test", path})
	var out bytes.Buffer
	c.SetOut(&out)
	err := c.Execute()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(strings.Contains(out.String(), "1 passed, 0 failed, 1 total")))
}

func TestTestReportsFailureAsError(t *testing.T) {
	doc := `{
		"exprs": [
			{"terms": [
				{"term":"setpath","segments":[{"seg":"name","text":"t1"}]},
				{"term":"getpath","segments":[{"seg":"name","text":"test"}]},
				{"term":"lit","kind":"string","value":"fails"},
				{"term":"code","body":{"exprs":[{"terms":[{"term":"lit","kind":"bool","value":"false"}]}]}}
			]},
			{"terms": [
				{"term":"getpath","segments":[{"seg":"name","text":"test-all"}]},
				{"term":"list","elts":[
					{"terms":[{"term":"getpath","segments":[{"seg":"name","text":"t1"}]}]}
				]}
			]}
		]
	}`
	path := writeProgram(t, doc)

	c := cmd.New([]string{"test", path})
	var out bytes.Buffer
	c.SetOut(&out)
	err := c.Execute()
	qt.Assert(t, qt.IsNotNil(err))
}
