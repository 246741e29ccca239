package dap

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	dap "github.com/google/go-dap"
	"github.com/kdbg/kdbg/runtime"
)

// pollOutput waits for the debuggee to produce an output-file response
// to a command just issued, the adapter-side analog of a terminal
// front-end blocking on a read of the same file.
func pollOutput(c *Client) (string, error) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		out, err := c.ReadOutput()
		if err != nil {
			return "", err
		}
		if out != "" {
			return out, nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return "", fmt.Errorf("timed out waiting for debuggee output")
}

// errDebuggeeGone is returned once the debuggee's state file stops
// being reachable (process exited, or attach never found one).
var errDebuggeeGone = errors.New("debuggee is no longer reachable")

type Capability int

const (
	VariableTypeCap Capability = iota
	ProgressReportingCap
)

// Session is one DAP client's view of a single debuggee, bridged
// through a Client polling the rendezvous files the debuggee's own
// runtime package reads and writes. Unlike a debugger stepping an
// interpreter in-process, a Session has no call stack or scope levels
// to report: every stop synthesizes exactly one stack frame (the
// function/line/vars the state file names) and one scope (its
// variables) - there is no richer model to draw on.
type Session struct {
	rw *bufio.ReadWriter

	client      *Client
	cancelWatch func()

	done chan struct{}
	err  error

	sendQueue chan dap.Message
	sendWg    sync.WaitGroup

	caps map[Capability]struct{}

	sourcesHandles    *handlesMap
	variablesHandles  *handlesMap
	stackFrameHandles *handlesMap

	mu          sync.Mutex
	lastState   StoppedState
	breakpoints map[string][]runtime.ParsedBreakpoint // file -> entries, session-local mirror
}

func (s *Session) stopWatch() {
	if s.cancelWatch != nil {
		s.cancelWatch()
	}
}

// resetHandles clears every handle map once the debuggee resumes: a
// VariablesReference or stack frame id minted for one stop is only
// ever valid until the next continue.
func (s *Session) resetHandles() {
	s.sourcesHandles.reset()
	s.variablesHandles.reset()
	s.stackFrameHandles.reset()
}

func (s *Session) handleRequest(ctx context.Context) error {
	msg, err := dap.ReadProtocolMessage(s.rw.Reader)
	if err != nil {
		return err
	}

	s.sendWg.Add(1)
	go func() {
		defer s.sendWg.Done()
		if msg, ok := msg.(dap.RequestMessage); ok {
			s.dispatchRequest(ctx, msg)
		}
	}()
	return nil
}

func (s *Session) dispatchRequest(ctx context.Context, msg dap.RequestMessage) {
	jsonmsg, _ := json.Marshal(msg)
	log.Printf("[-> to server] %s", string(jsonmsg))

	var err error
	switch req := msg.(type) {
	case *dap.InitializeRequest:
		err = s.onInitializeRequest(ctx, req)
	case *dap.LaunchRequest:
		err = s.onLaunchRequest(ctx, req)
	case *dap.AttachRequest:
		err = s.onAttachRequest(ctx, req)
	case *dap.DisconnectRequest:
		err = s.onDisconnectRequest(ctx, req)
	case *dap.TerminateRequest:
		err = s.onTerminateRequest(ctx, req)
	case *dap.RestartRequest:
		err = s.onRestartRequest(ctx, req)
	case *dap.SetBreakpointsRequest:
		err = s.onSetBreakpointsRequest(ctx, req)
	case *dap.SetFunctionBreakpointsRequest:
		err = s.onSetFunctionBreakpointsRequest(ctx, req)
	case *dap.SetExceptionBreakpointsRequest:
		err = s.onSetExceptionBreakpointsRequest(ctx, req)
	case *dap.ConfigurationDoneRequest:
		err = s.onConfigurationDoneRequest(ctx, req)
	case *dap.ContinueRequest:
		err = s.onContinueRequest(ctx, req)
	case *dap.NextRequest:
		err = s.onNextRequest(ctx, req)
	case *dap.StepInRequest:
		err = s.onStepInRequest(ctx, req)
	case *dap.StepOutRequest:
		err = s.onStepOutRequest(ctx, req)
	case *dap.StepBackRequest:
		err = s.onStepBackRequest(ctx, req)
	case *dap.ReverseContinueRequest:
		err = s.onReverseContinueRequest(ctx, req)
	case *dap.RestartFrameRequest:
		err = s.onRestartFrameRequest(ctx, req)
	case *dap.GotoRequest:
		err = s.onGotoRequest(ctx, req)
	case *dap.PauseRequest:
		err = s.onPauseRequest(ctx, req)
	case *dap.StackTraceRequest:
		err = s.onStackTraceRequest(ctx, req)
	case *dap.ScopesRequest:
		err = s.onScopesRequest(ctx, req)
	case *dap.VariablesRequest:
		err = s.onVariablesRequest(ctx, req)
	case *dap.SetVariableRequest:
		err = s.onSetVariableRequest(ctx, req)
	case *dap.SetExpressionRequest:
		err = s.onSetExpressionRequest(ctx, req)
	case *dap.SourceRequest:
		err = s.onSourceRequest(ctx, req)
	case *dap.ThreadsRequest:
		err = s.onThreadsRequest(ctx, req)
	case *dap.TerminateThreadsRequest:
		err = s.onTerminateThreadsRequest(ctx, req)
	case *dap.EvaluateRequest:
		err = s.onEvaluateRequest(ctx, req)
	case *dap.StepInTargetsRequest:
		err = s.onStepInTargetsRequest(ctx, req)
	case *dap.GotoTargetsRequest:
		err = s.onGotoTargetsRequest(ctx, req)
	case *dap.CompletionsRequest:
		err = s.onCompletionsRequest(ctx, req)
	case *dap.ExceptionInfoRequest:
		err = s.onExceptionInfoRequest(ctx, req)
	case *dap.LoadedSourcesRequest:
		err = s.onLoadedSourcesRequest(ctx, req)
	case *dap.DataBreakpointInfoRequest:
		err = s.onDataBreakpointInfoRequest(ctx, req)
	case *dap.SetDataBreakpointsRequest:
		err = s.onSetDataBreakpointsRequest(ctx, req)
	case *dap.ReadMemoryRequest:
		err = s.onReadMemoryRequest(ctx, req)
	case *dap.DisassembleRequest:
		err = s.onDisassembleRequest(ctx, req)
	case *dap.CancelRequest:
		err = s.onCancelRequest(ctx, req)
	case *dap.BreakpointLocationsRequest:
		err = s.onBreakpointLocationsRequest(ctx, req)
	default:
		log.Printf("unable to process %#v", req)
		return
	}
	if err != nil {
		log.Printf("[-> to client] err: %s", err)
		if errors.Is(err, errDebuggeeGone) {
			s.send(&dap.TerminatedEvent{
				Event: newEvent("terminated"),
			})
			s.err = err
			close(s.done)
			return
		}
		s.send(newErrorResponse(msg, err))
	}
}

func (s *Session) send(msgs ...dap.Message) {
	for _, msg := range msgs {
		s.sendQueue <- msg
	}
}

func (s *Session) sendFromQueue() {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.sendQueue:
			jsonmsg, _ := json.Marshal(msg)
			log.Printf("[-> to client] %s", string(jsonmsg))
			dap.WriteProtocolMessage(s.rw.Writer, msg)
			s.rw.Flush()
		}
	}
}

// InitializeRequest: sent as the first request from the client, to
// configure the adapter with client capabilities and retrieve its own.
func (s *Session) onInitializeRequest(ctx context.Context, req *dap.InitializeRequest) error {
	if req.Arguments.SupportsVariableType {
		s.caps[VariableTypeCap] = struct{}{}
	}
	if req.Arguments.SupportsProgressReporting {
		s.caps[ProgressReportingCap] = struct{}{}
	}

	s.send(&dap.InitializeResponse{
		Response: newResponse(req),
		Body: dap.Capabilities{
			SupportsConfigurationDoneRequest:   true,
			SupportsFunctionBreakpoints:        false,
			SupportsConditionalBreakpoints:     false,
			SupportsHitConditionalBreakpoints:  false,
			SupportsEvaluateForHovers:          true,
			ExceptionBreakpointFilters:         nil,
			SupportsStepBack:                   false,
			SupportsSetVariable:                false,
			SupportsRestartFrame:               false,
			SupportsGotoTargetsRequest:         false,
			SupportsStepInTargetsRequest:       false,
			SupportsCompletionsRequest:         false,
			CompletionTriggerCharacters:        nil,
			SupportsModulesRequest:             false,
			AdditionalModuleColumns:            nil,
			SupportedChecksumAlgorithms:        nil,
			SupportsRestartRequest:             false,
			SupportsExceptionOptions:           false,
			SupportsValueFormattingOptions:     false,
			SupportsExceptionInfoRequest:       false,
			SupportTerminateDebuggee:           false,
			SupportsDelayedStackTraceLoading:   false,
			SupportsLoadedSourcesRequest:       false,
			SupportsLogPoints:                  false,
			SupportsTerminateThreadsRequest:    false,
			SupportsSetExpression:              false,
			SupportsTerminateRequest:           true,
			SupportsDataBreakpoints:            false,
			SupportsReadMemoryRequest:          false,
			SupportsDisassembleRequest:         false,
			SupportsCancelRequest:              false,
			SupportsBreakpointLocationsRequest: false,
			SupportsClipboardContext:           false,
			SupportsSteppingGranularity:        false,
			SupportsInstructionBreakpoints:     false,
		},
	}, &dap.InitializedEvent{
		Event: newEvent("initialized"),
	})
	return nil
}

// launchArgs is the subset of launch/attach configuration this bridge
// understands: the rendezvous file paths a debuggee process was (or
// will be) started with.
type launchArgs struct {
	BreakpointsPath string `json:"breakpointsPath"`
	StatePath       string `json:"statePath"`
	CommandPath     string `json:"commandPath"`
	OutputPath      string `json:"outputPath"`
}

func (a launchArgs) toConfig() runtime.Config {
	cfg := runtime.Config{
		BreakpointsPath: runtime.DefaultBreakpointsFile,
		StatePath:       runtime.DefaultStateFile,
		CommandPath:     runtime.DefaultCommandFile,
		OutputPath:      runtime.DefaultOutputFile,
	}
	if a.BreakpointsPath != "" {
		cfg.BreakpointsPath = a.BreakpointsPath
	}
	if a.StatePath != "" {
		cfg.StatePath = a.StatePath
	}
	if a.CommandPath != "" {
		cfg.CommandPath = a.CommandPath
	}
	if a.OutputPath != "" {
		cfg.OutputPath = a.OutputPath
	}
	return cfg
}

func (s *Session) attach(raw json.RawMessage) error {
	var args launchArgs
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return err
		}
	}
	s.client = NewClient(args.toConfig())
	s.breakpoints = make(map[string][]runtime.ParsedBreakpoint)

	stop := make(chan struct{})
	s.cancelWatch = sync.OnceFunc(func() { close(stop) })
	ch := make(chan StoppedState)
	go s.client.Watch(stop, ch)
	go s.watchLoop(ch)
	return nil
}

// watchLoop forwards state-file transitions into StoppedEvent/
// ContinuedEvent notifications, the only way this bridge learns a
// debuggee halted: nothing calls back into the adapter directly.
func (s *Session) watchLoop(ch chan StoppedState) {
	wasRunning := true
	for st := range ch {
		s.mu.Lock()
		s.lastState = st
		s.mu.Unlock()

		if st.Running {
			if !wasRunning {
				s.resetHandles()
				s.send(&dap.ContinuedEvent{
					Event: newEvent("continued"),
					Body: dap.ContinuedEventBody{
						ThreadId:            1,
						AllThreadsContinued: true,
					},
				})
			}
			wasRunning = true
			continue
		}
		wasRunning = false
		s.send(&dap.StoppedEvent{
			Event: newEvent("stopped"),
			Body: dap.StoppedEventBody{
				Reason:            "breakpoint",
				ThreadId:          1,
				AllThreadsStopped: true,
			},
		})
	}
}

// LaunchRequest: starts (or in this bridge's case, attaches file
// polling to) the debuggee. Since launching is debuggee-specific, this
// bridge reads its own launchArgs out of the request's free-form
// configuration object rather than anything DAP itself defines.
func (s *Session) onLaunchRequest(ctx context.Context, req *dap.LaunchRequest) error {
	if err := s.attach(req.Arguments); err != nil {
		return err
	}
	s.send(&dap.LaunchResponse{
		Response: newResponse(req),
	})
	return nil
}

// AttachRequest: identical to launch for this bridge - the debuggee
// process is never spawned by the adapter, only ever observed through
// its rendezvous files, so launch and attach differ only in DAP's
// own vocabulary.
func (s *Session) onAttachRequest(ctx context.Context, req *dap.AttachRequest) error {
	if err := s.attach(req.Arguments); err != nil {
		return err
	}
	s.send(&dap.AttachResponse{
		Response: newResponse(req),
	})
	return nil
}

func (s *Session) onDisconnectRequest(ctx context.Context, req *dap.DisconnectRequest) error {
	s.stopWatch()
	s.send(&dap.DisconnectResponse{
		Response: newResponse(req),
	})
	return nil
}

func (s *Session) onTerminateRequest(ctx context.Context, req *dap.TerminateRequest) error {
	if s.client == nil {
		return fmt.Errorf("no debuggee attached")
	}
	if err := s.client.WriteCommand("quit"); err != nil {
		return err
	}
	s.send(&dap.TerminateResponse{
		Response: newResponse(req),
	})
	return nil
}

func (s *Session) onRestartRequest(ctx context.Context, req *dap.RestartRequest) error {
	return fmt.Errorf("RestartRequest is not supported: the rendezvous protocol has no process-restart notion, only quit")
}

// SetBreakpointsRequest: replaces all previous breakpoints for one
// source file with the given set, then rewrites the whole breakpoints
// file - the rendezvous protocol has no per-file incremental update,
// only a full-file poll-and-replace on the debuggee side.
func (s *Session) onSetBreakpointsRequest(ctx context.Context, req *dap.SetBreakpointsRequest) error {
	if s.client == nil {
		return fmt.Errorf("no debuggee attached")
	}
	if req.Arguments.Source.Path == "" {
		return fmt.Errorf("unable to set breakpoints: no source path given")
	}
	file := filepath.Base(req.Arguments.Source.Path)

	s.mu.Lock()
	entries := make([]runtime.ParsedBreakpoint, len(req.Arguments.Breakpoints))
	for i, want := range req.Arguments.Breakpoints {
		entries[i] = runtime.ParsedBreakpoint{File: file, Line: want.Line, Enabled: true}
	}
	s.breakpoints[file] = entries

	var all []runtime.ParsedBreakpoint
	for _, es := range s.breakpoints {
		all = append(all, es...)
	}
	s.mu.Unlock()

	if err := s.client.WriteBreakpoints(all); err != nil {
		return err
	}

	resp := &dap.SetBreakpointsResponse{Response: newResponse(req)}
	resp.Body.Breakpoints = make([]dap.Breakpoint, len(req.Arguments.Breakpoints))
	for i, want := range req.Arguments.Breakpoints {
		resp.Body.Breakpoints[i] = dap.Breakpoint{
			Verified: true,
			Line:     want.Line,
			Source:   req.Arguments.Source,
		}
	}
	s.send(resp)
	return nil
}

func (s *Session) onSetFunctionBreakpointsRequest(ctx context.Context, req *dap.SetFunctionBreakpointsRequest) error {
	return fmt.Errorf("SetFunctionBreakpointsRequest is not supported: breakpoints are (file, line) pairs only")
}

func (s *Session) onSetExceptionBreakpointsRequest(ctx context.Context, req *dap.SetExceptionBreakpointsRequest) error {
	// Sent even though no filters were advertised at initialization;
	// handled as a no-op.
	s.send(&dap.SetExceptionBreakpointsResponse{
		Response: newResponse(req),
	})
	return nil
}

func (s *Session) onConfigurationDoneRequest(ctx context.Context, req *dap.ConfigurationDoneRequest) error {
	s.send(&dap.ConfigurationDoneResponse{
		Response: newResponse(req),
	})
	return nil
}

func (s *Session) onContinueRequest(ctx context.Context, req *dap.ContinueRequest) error {
	if s.client == nil {
		return fmt.Errorf("no debuggee attached")
	}
	if err := s.client.WriteCommand("continue"); err != nil {
		return err
	}
	s.send(&dap.ContinueResponse{
		Response: newResponse(req),
		Body: dap.ContinueResponseBody{
			AllThreadsContinued: true,
		},
	})
	return nil
}

func (s *Session) onNextRequest(ctx context.Context, req *dap.NextRequest) error {
	if s.client == nil {
		return fmt.Errorf("no debuggee attached")
	}
	if err := s.client.WriteCommand("next"); err != nil {
		return err
	}
	s.send(&dap.NextResponse{
		Response: newResponse(req),
	})
	return nil
}

// StepInRequest: the rendezvous protocol's one-shot step trigger has
// no call-stack awareness: the debuggee arms the same trigger for
// "step" and "next", so step-into behaves exactly like step-over.
func (s *Session) onStepInRequest(ctx context.Context, req *dap.StepInRequest) error {
	if s.client == nil {
		return fmt.Errorf("no debuggee attached")
	}
	if err := s.client.WriteCommand("step"); err != nil {
		return err
	}
	s.send(&dap.StepInResponse{
		Response: newResponse(req),
	})
	return nil
}

func (s *Session) onStepOutRequest(ctx context.Context, req *dap.StepOutRequest) error {
	return fmt.Errorf("StepOutRequest is not supported: the step trigger has no call-stack model to step out of")
}

func (s *Session) onStepBackRequest(ctx context.Context, req *dap.StepBackRequest) error {
	return fmt.Errorf("StepBackRequest is not supported: execution is not reversible")
}

func (s *Session) onReverseContinueRequest(ctx context.Context, req *dap.ReverseContinueRequest) error {
	return fmt.Errorf("ReverseContinueRequest is not supported: execution is not reversible")
}

func (s *Session) onRestartFrameRequest(ctx context.Context, req *dap.RestartFrameRequest) error {
	return fmt.Errorf("RestartFrameRequest is not supported")
}

func (s *Session) onGotoRequest(ctx context.Context, req *dap.GotoRequest) error {
	return fmt.Errorf("GotoRequest is not supported")
}

func (s *Session) onPauseRequest(ctx context.Context, req *dap.PauseRequest) error {
	return fmt.Errorf("PauseRequest is not supported: the debuggee only halts at a breakpoint or armed step, never on command")
}

type stackFrame struct {
	threadID   int
	frameIndex int
}

// StackTraceRequest: synthesizes a single frame from the last known
// stopped state, since the rendezvous protocol carries no call stack.
func (s *Session) onStackTraceRequest(ctx context.Context, req *dap.StackTraceRequest) error {
	s.mu.Lock()
	st := s.lastState
	s.mu.Unlock()

	if st.Running {
		s.send(&dap.StackTraceResponse{
			Response: newResponse(req),
			Body:     dap.StackTraceResponseBody{},
		})
		return nil
	}

	threadId := req.Arguments.ThreadId
	source := dap.Source{Name: filepath.Base(st.File), Path: st.File}
	frameId := s.stackFrameHandles.create(fmt.Sprintf("%d+0", threadId), stackFrame{threadId, 0})

	s.send(&dap.StackTraceResponse{
		Response: newResponse(req),
		Body: dap.StackTraceResponseBody{
			TotalFrames: 1,
			StackFrames: []dap.StackFrame{{
				Id:     frameId,
				Name:   st.Function,
				Source: source,
				Line:   st.Line,
				Column: 1,
			}},
		},
	})
	return nil
}

// ScopesRequest: a single "locals" scope, the whole of the last stop's
// variable snapshot - there is no argument/module/builtin split to
// report, since the runtime hands the adapter one flat name/value list.
func (s *Session) onScopesRequest(ctx context.Context, req *dap.ScopesRequest) error {
	s.mu.Lock()
	vars := s.lastState.Vars
	s.mu.Unlock()

	ref := s.variablesHandles.create("locals", vars)
	s.send(&dap.ScopesResponse{
		Response: newResponse(req),
		Body: dap.ScopesResponseBody{
			Scopes: []dap.Scope{{
				Name:               "Locals",
				VariablesReference: ref,
			}},
		},
	})
	return nil
}

func (s *Session) onVariablesRequest(ctx context.Context, req *dap.VariablesRequest) error {
	v, ok := s.variablesHandles.get(req.Arguments.VariablesReference)
	if !ok {
		return fmt.Errorf("unknown variables reference %d", req.Arguments.VariablesReference)
	}

	lines := v.([]runtime.VarLine)
	vars := make([]dap.Variable, len(lines))
	for i, vl := range lines {
		vars[i] = dap.Variable{
			Name:  vl.Name,
			Value: vl.Summary,
		}
		if _, ok := s.caps[VariableTypeCap]; ok {
			vars[i].Type = vl.Type
		}
	}

	s.send(&dap.VariablesResponse{
		Response: newResponse(req),
		Body: dap.VariablesResponseBody{
			Variables: vars,
		},
	})
	return nil
}

func (s *Session) onSetVariableRequest(ctx context.Context, req *dap.SetVariableRequest) error {
	return fmt.Errorf("SetVariableRequest is not supported: the rendezvous protocol has no variable-assignment command")
}

func (s *Session) onSetExpressionRequest(ctx context.Context, req *dap.SetExpressionRequest) error {
	return fmt.Errorf("SetExpressionRequest is not supported")
}

func (s *Session) onSourceRequest(ctx context.Context, req *dap.SourceRequest) error {
	return fmt.Errorf("SourceRequest is not supported: sources are always read from disk, never embedded")
}

func (s *Session) onThreadsRequest(ctx context.Context, req *dap.ThreadsRequest) error {
	s.send(&dap.ThreadsResponse{
		Response: newResponse(req),
		Body: dap.ThreadsResponseBody{
			Threads: []dap.Thread{{
				Id:   1,
				Name: "main",
			}},
		},
	})
	return nil
}

func (s *Session) onTerminateThreadsRequest(ctx context.Context, req *dap.TerminateThreadsRequest) error {
	return fmt.Errorf("TerminateThreadsRequest is not supported")
}

// EvaluateRequest: reuses the same variable-path query ("print
// <expr>") a terminal front-end would type, routed through the
// command/output files instead of a terminal prompt.
func (s *Session) onEvaluateRequest(ctx context.Context, req *dap.EvaluateRequest) error {
	if s.client == nil {
		return fmt.Errorf("no debuggee attached")
	}
	if err := s.client.WriteCommand("print " + req.Arguments.Expression); err != nil {
		return err
	}
	out, err := pollOutput(s.client)
	if err != nil {
		return err
	}
	s.send(&dap.EvaluateResponse{
		Response: newResponse(req),
		Body: dap.EvaluateResponseBody{
			Result: out,
		},
	})
	return nil
}

func (s *Session) onStepInTargetsRequest(ctx context.Context, req *dap.StepInTargetsRequest) error {
	return fmt.Errorf("StepInTargetsRequest is not supported")
}

func (s *Session) onGotoTargetsRequest(ctx context.Context, req *dap.GotoTargetsRequest) error {
	return fmt.Errorf("GotoTargetsRequest is not supported")
}

func (s *Session) onCompletionsRequest(ctx context.Context, req *dap.CompletionsRequest) error {
	return fmt.Errorf("CompletionsRequest is not supported")
}

func (s *Session) onExceptionInfoRequest(ctx context.Context, req *dap.ExceptionInfoRequest) error {
	return fmt.Errorf("ExceptionInfoRequest is not supported: the rendezvous protocol carries no exception model")
}

func (s *Session) onLoadedSourcesRequest(ctx context.Context, req *dap.LoadedSourcesRequest) error {
	return fmt.Errorf("LoadedSourcesRequest is not supported")
}

func (s *Session) onDataBreakpointInfoRequest(ctx context.Context, req *dap.DataBreakpointInfoRequest) error {
	return fmt.Errorf("DataBreakpointInfoRequest is not supported")
}

func (s *Session) onSetDataBreakpointsRequest(ctx context.Context, req *dap.SetDataBreakpointsRequest) error {
	return fmt.Errorf("SetDataBreakpointsRequest is not supported")
}

func (s *Session) onReadMemoryRequest(ctx context.Context, req *dap.ReadMemoryRequest) error {
	return fmt.Errorf("ReadMemoryRequest is not supported")
}

func (s *Session) onDisassembleRequest(ctx context.Context, req *dap.DisassembleRequest) error {
	return fmt.Errorf("DisassembleRequest is not supported")
}

func (s *Session) onCancelRequest(ctx context.Context, req *dap.CancelRequest) error {
	return fmt.Errorf("CancelRequest is not supported")
}

func (s *Session) onBreakpointLocationsRequest(ctx context.Context, req *dap.BreakpointLocationsRequest) error {
	return fmt.Errorf("BreakpointLocationsRequest is not supported: breakpoints are accepted at any requested line")
}
