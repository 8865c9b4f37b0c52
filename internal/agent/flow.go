package agent

import (
	"context"
	"sync"

	"github.com/firebase/genkit/go/core"
	"github.com/firebase/genkit/go/genkit"
)

// FlowName identifies the chat flow in the genkit registry.
const FlowName = "rhassist/chat"

// Input is the wire-level input of the chat flow.
type Input struct {
	Message  string `json:"message"`
	Profile  string `json:"profile,omitempty"`
	Domaine  string `json:"domaine,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`
}

// Output is the wire-level output of the chat flow.
type Output struct {
	Response    string `json:"response"`
	ThreadID    string `json:"thread_id"`
	SourcesUsed bool   `json:"sources_used"`
}

var (
	flowOnce sync.Once
	chatFlow *core.Flow[Input, Output, struct{}]
)

// DefineFlow registers the chat flow once per process. Genkit panics on
// duplicate flow names, so repeated calls return the first flow.
func DefineFlow(g *genkit.Genkit, a *Agent) *core.Flow[Input, Output, struct{}] {
	flowOnce.Do(func() {
		chatFlow = genkit.DefineFlow(g, FlowName,
			func(ctx context.Context, in Input) (Output, error) {
				resp, err := a.Chat(ctx, Request{
					Message:  in.Message,
					Profile:  in.Profile,
					Domaine:  in.Domaine,
					ThreadID: in.ThreadID,
				})
				if err != nil {
					return Output{}, err
				}
				return Output{
					Response:    resp.Text,
					ThreadID:    resp.ThreadID,
					SourcesUsed: resp.SourcesUsed,
				}, nil
			})
	})
	return chatFlow
}

// ResetFlowForTesting clears the flow singleton so tests can define flows
// against fresh genkit instances.
func ResetFlowForTesting() {
	flowOnce = sync.Once{}
	chatFlow = nil
}
