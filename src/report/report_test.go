package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRun(t *testing.T) {
	r := New("https://web.pypestream.com/preview")
	_, err := uuid.Parse(r.ID)
	assert.NoError(t, err)
	assert.Equal(t, StatusRunning, r.Status)
	assert.False(t, r.StartTime.IsZero())
	assert.Empty(t, r.Steps)
}

func TestAddCountsSummary(t *testing.T) {
	r := New("u")
	r.Add(Step{Name: "Engage with us button", Status: StatusPassed, Text: "Engage", Confidence: 92})
	r.Add(Step{Name: "injuries no", Status: StatusMissed, Screenshot: "/tmp/x.png"})
	r.Add(Step{Name: "policy number", Status: StatusPassed})

	assert.Equal(t, Summary{Total: 3, Passed: 2, Missed: 1}, r.Summary)
	require.Len(t, r.Steps, 3)
	assert.False(t, r.Steps[0].Time.IsZero())
}

func TestNilRunIsNoop(t *testing.T) {
	var r *Run
	r.Add(Step{Name: "x"})
	r.Finish(StatusPassed, nil)
}

func TestWrite(t *testing.T) {
	r := New("https://example.test/preview")
	r.Add(Step{Name: "Engage with us button", Status: StatusPassed})
	r.Finish(StatusAborted, errors.New("engage button not found"))

	dir := filepath.Join(t.TempDir(), "logs")
	path, err := r.Write(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_"+r.ID+".json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "aborted", decoded["status"])
	assert.Equal(t, "engage button not found", decoded["error"])
	assert.NotNil(t, decoded["endTime"])
	steps, ok := decoded["steps"].([]interface{})
	require.True(t, ok)
	assert.Len(t, steps, 1)
}
