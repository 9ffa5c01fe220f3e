// Command demo runs a full chain-of-thought flow from the terminal: clarify
// the question, fan out web research, synthesize the findings, write the
// answer and save the artifacts.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MaxiDonkey/synkflow/artifact"
	"github.com/MaxiDonkey/synkflow/chain"
	"github.com/MaxiDonkey/synkflow/client"
	"github.com/MaxiDonkey/synkflow/event"
	"github.com/MaxiDonkey/synkflow/provider/websearch"
)

var stageNames = map[int]string{
	chain.StageClarify:    "clarify",
	chain.StageResearch:   "research",
	chain.StageSynthesize: "synthesize",
	chain.StageWrite:      "write",
}

func main() {
	godotenv.Load()

	model := flag.String("model", "claude-sonnet-4-5", "model to run the sequential stages with")
	maxTokens := flag.Int("max-tokens", 4096, "generation cap per step")
	outDir := flag.String("out", "artifacts", "directory for saved artifacts")
	label := flag.String("label", "answer", "label prefix for artifact file names")
	searchCmd := flag.String("search-server", "", "MCP web-search server command (optional; empty falls back to the model)")
	quiet := flag.Bool("quiet", false, "suppress streaming deltas")
	flag.Parse()

	question := strings.Join(flag.Args(), " ")
	if question == "" {
		fmt.Print("Question: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		question = strings.TrimSpace(line)
	}
	if question == "" {
		fmt.Fprintln(os.Stderr, "no question given")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec := client.New(client.Config{
		Keys: client.Keys{
			Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
			OpenAI:    os.Getenv("OPENAI_API_KEY"),
			Google:    os.Getenv("GOOGLE_API_KEY"),
		},
	})

	cfg := chain.FlowConfig{
		Prompt:     question,
		Clarify:    chain.MustChain(chain.DefaultClarify),
		Synthesize: chain.MustChain(chain.DefaultSynthesize),
		Write:      chain.MustChain(chain.DefaultWrite),
		Executor:   exec,
		Saver:      artifact.New(),
		OutDir:     *outDir,
		Label:      *label,
		Model:      *model,
		MaxTokens:  *maxTokens,
	}

	if *searchCmd != "" {
		search, err := websearch.New(ctx, *searchCmd, os.Environ(), nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "websearch: %v\n", err)
			os.Exit(1)
		}
		defer search.Close()
		cfg.Research = search
	}

	// The channel is never closed: on Ctrl-C the flow goroutines are still
	// live and emitting, and a send on a closed channel would panic them.
	// The drainer is told to stop instead, and late emits fall into the
	// buffer or get dropped by the non-blocking Emit.
	events := make(chan event.Event, 256)
	stopDrain := make(chan struct{})
	done := make(chan struct{})
	go drain(events, *quiet, stopDrain, done)
	cfg.Events = events

	flow, err := chain.NewFlow(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flow: %v\n", err)
		os.Exit(1)
	}

	path, err := flow.Run(ctx).Await(ctx)
	close(stopDrain)
	<-done
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nSaved: %s\n", path)
}

// drain prints a progress line per stage and streams deltas as they arrive.
// After stop closes it flushes whatever is buffered, then signals done.
func drain(events <-chan event.Event, quiet bool, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case ev := <-events:
			report(ev, quiet)
		case <-stop:
			for {
				select {
				case ev := <-events:
					report(ev, quiet)
				default:
					return
				}
			}
		}
	}
}

func report(ev event.Event, quiet bool) {
	switch ev.Type {
	case event.StageStart:
		fmt.Printf("\n── %s ──\n", stageNames[ev.Stage])
	case event.UnitStart:
		fmt.Printf("[step %d]\n", ev.Ordinal)
	case event.Delta:
		if !quiet {
			fmt.Print(ev.Delta)
		}
	case event.Saved:
		fmt.Printf("\nartifact: %s\n", ev.Path)
	case event.RunError:
		fmt.Fprintf(os.Stderr, "\nerror: %v\n", ev.Err)
	}
}
