package autogen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjoseph-dev/crewsched/core/model"
)

type nopLog struct{}

func (nopLog) Debugf(string, ...any)         {}
func (nopLog) Debugw(string, map[string]any) {}
func (nopLog) Infof(string, ...any)          {}
func (nopLog) Warnf(string, ...any)          {}
func (nopLog) Errorf(string, ...any)         {}

type fakeGenerator struct {
	calls  int
	result model.GenerationResult
	err    error
}

func (f *fakeGenerator) Generate(context.Context, model.ScheduleType) (model.GenerationResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeCommitter struct {
	committed [][]model.ScheduleEntry
	err       error
}

func (f *fakeCommitter) CommitSchedules(_ context.Context, entries []model.ScheduleEntry) ([]model.Trip, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.committed = append(f.committed, entries)
	trips := make([]model.Trip, len(entries))
	return trips, nil
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "0 3 * * *", c.CronSpec)
	assert.Equal(t, "daily", c.ScheduleType)
	assert.NoError(t, c.Validate())
}

func TestConfigValidateRejectsBadSpec(t *testing.T) {
	c := Config{CronSpec: "not a cron spec", ScheduleType: "daily"}
	assert.Error(t, c.Validate())

	c = Config{CronSpec: "0 3 * * *", ScheduleType: "yearly"}
	assert.Error(t, c.Validate())
}

func TestNewRequiresCommitterWhenCommitting(t *testing.T) {
	_, err := New(Config{Commit: true}, &fakeGenerator{}, nil, nopLog{})
	assert.Error(t, err)

	_, err = New(Config{}, nil, nil, nopLog{})
	assert.Error(t, err)
}

func TestRunGeneratesWithoutCommit(t *testing.T) {
	gen := &fakeGenerator{result: model.GenerationResult{
		Schedules: []model.ScheduleEntry{{Route: "r1"}},
		Summary:   model.Summary{RunID: "run-1", TotalGenerated: 1},
	}}
	com := &fakeCommitter{}
	j, err := New(Config{}, gen, com, nopLog{})
	require.NoError(t, err)

	require.NoError(t, j.Run(context.Background()))
	assert.Equal(t, 1, gen.calls)
	assert.Empty(t, com.committed)
}

func TestRunCommitsWhenEnabled(t *testing.T) {
	entries := []model.ScheduleEntry{{Route: "r1"}, {Route: "r2"}}
	gen := &fakeGenerator{result: model.GenerationResult{
		Schedules: entries,
		Summary:   model.Summary{RunID: "run-1", TotalGenerated: 2},
	}}
	com := &fakeCommitter{}
	j, err := New(Config{Commit: true}, gen, com, nopLog{})
	require.NoError(t, err)

	require.NoError(t, j.Run(context.Background()))
	require.Len(t, com.committed, 1)
	assert.Equal(t, entries, com.committed[0])
}

func TestRunPropagatesErrors(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("roster down")}
	j, err := New(Config{}, gen, nil, nopLog{})
	require.NoError(t, err)
	assert.Error(t, j.Run(context.Background()))

	gen = &fakeGenerator{result: model.GenerationResult{
		Schedules: []model.ScheduleEntry{{Route: "r1"}},
	}}
	com := &fakeCommitter{err: errors.New("commit clash")}
	j, err = New(Config{Commit: true}, gen, com, nopLog{})
	require.NoError(t, err)
	assert.Error(t, j.Run(context.Background()))
}

func TestStartStop(t *testing.T) {
	gen := &fakeGenerator{}
	j, err := New(Config{CronSpec: "0 3 * * *"}, gen, nil, nopLog{})
	require.NoError(t, err)

	require.NoError(t, j.Start(context.Background()))
	assert.Error(t, j.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		j.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not return")
	}

	// Stop twice is safe.
	j.Stop()
}
