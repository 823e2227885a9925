package scenario

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Peptide90/SubstationMimicSim-sub000/internal/model"
)

func TestSampleIsValid(t *testing.T) {
	require.NoError(t, Validate(Sample()))
}

func TestLoadFileRoundTrip(t *testing.T) {
	raw, err := json.Marshal(Sample())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	sc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Single feeder basics", sc.Name)
	assert.Len(t, sc.Assets, 6)
}

func TestValidateRejectsOutOfOrderEvents(t *testing.T) {
	sc := Sample()
	sc.Events = []model.ScenarioEvent{
		{AtSec: 100, Type: model.EventNote, Summary: "later"},
		{AtSec: 50, Type: model.EventNote, Summary: "earlier"},
	}
	err := Validate(sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of order")
}

func TestValidateRejectsDanglingReferences(t *testing.T) {
	sc := Sample()
	sc.Edges = append(sc.Edges, model.Edge{ID: "bad", From: "S1", To: "NOPE"})
	assert.Error(t, Validate(sc))

	sc = Sample()
	sc.Events = append(sc.Events, model.ScenarioEvent{AtSec: 500, Type: model.EventDBI, AssetID: "NOPE"})
	assert.Error(t, Validate(sc))

	sc = Sample()
	sc.Rules = append(sc.Rules, model.Rule{ID: "r", Type: model.RuleMutex, Group: []string{"NOPE"}})
	assert.Error(t, Validate(sc))
}

func TestValidateRejectsEmptyContent(t *testing.T) {
	sc := Sample()
	sc.Name = ""
	assert.Error(t, Validate(sc))

	sc = Sample()
	sc.DurationSec = 0
	assert.Error(t, Validate(sc))

	sc = Sample()
	sc.Assets = nil
	assert.Error(t, Validate(sc))

	sc = Sample()
	sc.Assets = append(sc.Assets, sc.Assets[0])
	assert.Error(t, Validate(sc), "duplicate asset ids")
}
