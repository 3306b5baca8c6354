package agent

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAgent struct {
	name     string
	schedule string
	runs     atomic.Int32
}

func (a *countingAgent) GetName() string     { return a.name }
func (a *countingAgent) GetSchedule() string { return a.schedule }
func (a *countingAgent) Execute(ctx context.Context) error {
	a.runs.Add(1)
	return nil
}

func TestScheduler_RegisterAndRunByName(t *testing.T) {
	s := NewScheduler()

	daily := &countingAgent{name: "daily", schedule: "0 7 * * *"}
	manual := &countingAgent{name: "manual"}
	require.NoError(t, s.RegisterAgent(daily))
	require.NoError(t, s.RegisterAgent(manual))
	assert.Equal(t, []string{"daily", "manual"}, s.GetRegisteredAgents())

	require.NoError(t, s.RunAgentByName(context.Background(), "manual"))
	assert.Equal(t, int32(1), manual.runs.Load())
	assert.Equal(t, int32(0), daily.runs.Load())

	assert.Error(t, s.RunAgentByName(context.Background(), "missing"))
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler()
	err := s.RegisterAgent(&countingAgent{name: "broken", schedule: "not a cron"})
	assert.Error(t, err)
	assert.Empty(t, s.GetRegisteredAgents())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.RegisterAgent(&countingAgent{name: "daily", schedule: "@daily"}))
	s.Start()
	s.Stop()
}

func TestScheduler_RunRecordsExecution(t *testing.T) {
	s := NewScheduler()
	a := &countingAgent{name: "job"}
	s.run(a)
	assert.Equal(t, int32(1), a.runs.Load())
}
