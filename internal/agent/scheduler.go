package agent

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJobTimeout bounds one scheduled run.
const DefaultJobTimeout = 5 * time.Minute

// Scheduler runs registered agents on their cron schedules.
type Scheduler struct {
	cron       *cron.Cron
	jobTimeout time.Duration

	mu     sync.Mutex
	agents []Agent
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		jobTimeout: DefaultJobTimeout,
		agents:     make([]Agent, 0),
	}
}

// RegisterAgent adds an agent. Agents with a schedule are added to cron right away.
func (s *Scheduler) RegisterAgent(agent Agent) error {
	schedule := agent.GetSchedule()
	if schedule != "" {
		_, err := s.cron.AddFunc(schedule, func() {
			s.run(agent)
		})
		if err != nil {
			log.Printf("⚠️ Failed to schedule agent %s: %v", agent.GetName(), err)
			return fmt.Errorf("invalid schedule for %s: %w", agent.GetName(), err)
		}
		log.Printf("📅 [%s] Scheduled with cron: %s", agent.GetName(), schedule)
	} else {
		log.Printf("📝 [%s] Registered as on-demand agent (no schedule)", agent.GetName())
	}

	s.mu.Lock()
	s.agents = append(s.agents, agent)
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) run(agent Agent) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	log.Printf("🤖 [%s] Starting scheduled job...", agent.GetName())
	if err := agent.Execute(ctx); err != nil {
		log.Printf("❌ [%s] Job failed: %v", agent.GetName(), err)
		return
	}
	log.Printf("✅ [%s] Job completed successfully", agent.GetName())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("🚀 Agent Scheduler started with %d registered agents", len(s.GetRegisteredAgents()))
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 Agent Scheduler stopped")
}

// RunAgentByName runs one agent now, outside its schedule.
func (s *Scheduler) RunAgentByName(ctx context.Context, name string) error {
	s.mu.Lock()
	var found Agent
	for _, a := range s.agents {
		if a.GetName() == name {
			found = a
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		log.Printf("⚠️ Agent with name '%s' not found", name)
		return fmt.Errorf("agent %q not found", name)
	}

	log.Printf("🎯 [%s] Running on-demand execution...", name)
	return found.Execute(ctx)
}

func (s *Scheduler) GetRegisteredAgents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(s.agents))
	for i, a := range s.agents {
		names[i] = a.GetName()
	}
	return names
}
