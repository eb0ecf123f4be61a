// Package core implements a bounded think/act/observe reasoning loop over
// a pluggable model backend. Each cycle is one model call per phase; the
// loop ends when a reflection signals completion or the iteration bound is
// reached.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	aicore "github.com/quorumlabs/peerpanel/src/ai/core"
)

// StepType labels one trace entry.
type StepType string

const (
	StepThought     StepType = "thought"
	StepAction      StepType = "action"
	StepObservation StepType = "observation"
)

// Step is one recorded phase of the loop.
type Step struct {
	Type    StepType `json:"type"`
	Content string   `json:"content"`
}

// State tracks where the agent is in its loop.
type State string

const (
	StateThinking  State = "thinking"
	StateActing    State = "acting"
	StateObserving State = "observing"
	StateComplete  State = "complete"
)

// Observation is the reflection on one action result and whether the agent
// considers the task finished.
type Observation struct {
	Reflection string
	Complete   bool
}

// TaskResult is the outcome of one ExecuteTask run.
type TaskResult struct {
	Result     string `json:"result"`
	Trace      []Step `json:"trace"`
	Iterations int    `json:"iterations"`
}

// DefaultMaxIterations bounds ExecuteTask cycles unless overridden.
const DefaultMaxIterations = 5

// A reflection mentioning any of these ends the loop.
var completionMarkers = []string{"complete", "done", "finished", "sufficient"}

// Agent drives the loop for one persona. The trace belongs to one task
// execution at a time; an Agent is not safe for concurrent ExecuteTask
// calls.
type Agent struct {
	role          string
	context       string
	client        aicore.Client
	maxIterations int
	state         State
	trace         []Step
}

// New builds an agent for a role. The task context is serialized once and
// embedded verbatim in every think prompt.
func New(role string, taskContext map[string]any, client aicore.Client) *Agent {
	if taskContext == nil {
		taskContext = map[string]any{}
	}
	ctxJSON, err := json.Marshal(taskContext)
	if err != nil {
		ctxJSON = []byte("{}")
	}
	return &Agent{
		role:          role,
		context:       string(ctxJSON),
		client:        client,
		maxIterations: DefaultMaxIterations,
		state:         StateThinking,
	}
}

// SetMaxIterations bounds ExecuteTask cycles. Values below 1 are ignored.
func (a *Agent) SetMaxIterations(n int) {
	if n >= 1 {
		a.maxIterations = n
	}
}

func (a *Agent) Role() string { return a.role }

func (a *Agent) State() State { return a.state }

// Trace returns a copy of the steps recorded so far.
func (a *Agent) Trace() []Step {
	out := make([]Step, len(a.trace))
	copy(out, a.trace)
	return out
}

// Think reasons about a situation and records the thought.
func (a *Agent) Think(ctx context.Context, situation string) (string, error) {
	a.state = StateThinking
	messages := []aicore.Message{
		{Role: aicore.RoleSystem, Content: fmt.Sprintf("You are %s. Think step by step about the situation.", a.role)},
		{Role: aicore.RoleUser, Content: fmt.Sprintf("Context: %s\n\nSituation: %s\n\nWhat are your thoughts?", a.context, situation)},
	}
	thought, err := a.client.Complete(ctx, messages, aicore.Options{Temperature: 0.7})
	if err != nil {
		return "", fmt.Errorf("think: %w", err)
	}
	a.record(StepThought, thought)
	return thought, nil
}

// Act carries out an action prompt and records the result.
func (a *Agent) Act(ctx context.Context, actionPrompt string) (string, error) {
	a.state = StateActing
	messages := []aicore.Message{
		{Role: aicore.RoleSystem, Content: fmt.Sprintf("You are %s. Based on your reasoning, take the requested action.", a.role)},
		{Role: aicore.RoleUser, Content: actionPrompt},
	}
	result, err := a.client.Complete(ctx, messages, aicore.Options{Temperature: 0.7})
	if err != nil {
		return "", fmt.Errorf("act: %w", err)
	}
	a.record(StepAction, result)
	return result, nil
}

// Observe reflects on an action result, records the reflection, and decides
// whether the task is finished.
func (a *Agent) Observe(ctx context.Context, result string) (Observation, error) {
	a.state = StateObserving
	messages := []aicore.Message{
		{Role: aicore.RoleSystem, Content: fmt.Sprintf("You are %s. Reflect on the observation and determine next steps.", a.role)},
		{Role: aicore.RoleUser, Content: fmt.Sprintf("Observation: %s\n\nWhat do you conclude? Should we continue or are we done?", result)},
	}
	reflection, err := a.client.Complete(ctx, messages, aicore.Options{Temperature: 0.5})
	if err != nil {
		return Observation{}, fmt.Errorf("observe: %w", err)
	}
	a.record(StepObservation, reflection)

	obs := Observation{Reflection: reflection, Complete: signalsCompletion(reflection)}
	if obs.Complete {
		a.state = StateComplete
	}
	return obs, nil
}

// ExecuteTask runs think/act/observe cycles until an observation signals
// completion or the bound is hit. The trace is reset at the start of every
// call; the last action result is the task result either way. A model
// failure in any phase fails the whole invocation.
func (a *Agent) ExecuteTask(ctx context.Context, task string) (*TaskResult, error) {
	a.trace = nil
	a.state = StateThinking

	var lastAction string
	iterations := 0
	for i := 0; i < a.maxIterations; i++ {
		iterations = i + 1

		thought, err := a.Think(ctx, fmt.Sprintf("Iteration %d: %s", i+1, task))
		if err != nil {
			return nil, err
		}

		lastAction, err = a.Act(ctx, fmt.Sprintf("Based on this thought: %s\n\nExecute: %s", thought, task))
		if err != nil {
			return nil, err
		}

		obs, err := a.Observe(ctx, lastAction)
		if err != nil {
			return nil, err
		}
		if obs.Complete {
			break
		}
	}
	a.state = StateComplete

	return &TaskResult{Result: lastAction, Trace: a.Trace(), Iterations: iterations}, nil
}

// ExplainReasoning renders the recorded trace for operators.
func (a *Agent) ExplainReasoning() string {
	parts := make([]string, 0, len(a.trace))
	for _, step := range a.trace {
		parts = append(parts, fmt.Sprintf("**%s**: %s", strings.ToUpper(string(step.Type)), step.Content))
	}
	return strings.Join(parts, "\n\n")
}

func (a *Agent) record(t StepType, content string) {
	a.trace = append(a.trace, Step{Type: t, Content: content})
}

func signalsCompletion(reflection string) bool {
	lower := strings.ToLower(reflection)
	for _, marker := range completionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
